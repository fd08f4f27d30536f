package httpapi

import (
	"testing"
	"time"
)

func TestConfigValidateAppliesDefaults(test *testing.T) {
	test.Parallel()

	cfg := Config{JWTSigningKey: "secret"}
	if err := cfg.Validate(); err != nil {
		test.Fatalf("validate: %v", err)
	}
	if cfg.ListenAddr != defaultListenAddr {
		test.Fatalf("expected default listen addr, got %q", cfg.ListenAddr)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != defaultAllowedOrigin {
		test.Fatalf("expected default origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.JWTIssuer != defaultTokenIssuer {
		test.Fatalf("expected default issuer, got %q", cfg.JWTIssuer)
	}
	if cfg.RequestTimeout != 5*time.Second {
		test.Fatalf("expected default timeout, got %v", cfg.RequestTimeout)
	}
}

func TestConfigValidateRequiresSigningKey(test *testing.T) {
	test.Parallel()

	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		test.Fatal("expected error for missing signing key")
	}
}

func TestParseAllowedOrigins(test *testing.T) {
	test.Parallel()

	origins := ParseAllowedOrigins(" https://a.example , ,https://b.example")
	if len(origins) != 2 {
		test.Fatalf("expected two origins, got %v", origins)
	}
	if origins[0] != "https://a.example" || origins[1] != "https://b.example" {
		test.Fatalf("unexpected origins %v", origins)
	}
}
