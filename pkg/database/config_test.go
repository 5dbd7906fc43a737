package database

import "testing"

func TestConfig_Validate_RequiresPassword(t *testing.T) {
	cfg := Config{MaxOpenConns: 10, MaxIdleConns: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing password")
	}
}

func TestConfig_Validate_IdleExceedsOpen(t *testing.T) {
	cfg := Config{Password: "x", MaxOpenConns: 5, MaxIdleConns: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when idle conns exceed open conns")
	}
}

func TestConfig_Validate_OK(t *testing.T) {
	cfg := Config{Password: "x", MaxOpenConns: 10, MaxIdleConns: 5}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5432, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=d sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
