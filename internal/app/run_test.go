package app

import (
	"io"
	"testing"
)

func TestInit_MissingRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Init(io.Discard); err == nil {
		t.Error("expected error when required environment variables are missing")
	}
}

func TestInit_Success(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/noteman")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Init(io.Discard)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want default 8080", cfg.ServerPort)
	}
}
