package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/SakunaTharaka/easypos-cashbook/pkg/cashbook"
)

const contextKeyIdentity = "auth_identity"

// identity carries the tenant and actor resolved from a bearer token.
type identity struct {
	TenantID cashbook.TenantID
	Actor    cashbook.UserID
}

type tokenClaims struct {
	TenantID string `json:"tid"`
	jwt.RegisteredClaims
}

// authMiddleware validates an HS256 bearer token and stores the caller's
// identity in the request context. Tokens carry the tenant id in "tid"
// and the acting user in the standard subject claim.
func authMiddleware(signingKey []byte, issuer string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		rawToken, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(rawToken) == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing bearer token"))
			return
		}

		claims := &tokenClaims{}
		_, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return signingKey, nil
		}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "invalid token"))
			return
		}

		tenantID, err := cashbook.NewTenantID(claims.TenantID)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "token missing tenant"))
			return
		}
		actor, err := cashbook.NewUserID(claims.Subject)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "token missing subject"))
			return
		}

		ctx.Set(contextKeyIdentity, identity{TenantID: tenantID, Actor: actor})
		ctx.Next()
	}
}

func getIdentity(ctx *gin.Context) (identity, bool) {
	value, ok := ctx.Get(contextKeyIdentity)
	if !ok {
		return identity{}, false
	}
	resolved, ok := value.(identity)
	return resolved, ok
}
