package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "8080" || cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RefreshTokenTTL != 7*24*time.Hour {
		t.Fatalf("refresh ttl = %v", cfg.RefreshTokenTTL)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("REPORT_DELAY", "150ms")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REPORT_WORKERS", "0")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("driver = %q", cfg.DBDriver)
	}
	if cfg.ReportDelay != 150*time.Millisecond {
		t.Fatalf("delay = %v", cfg.ReportDelay)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.ReportWorkers != 1 {
		t.Fatalf("workers = %d", cfg.ReportWorkers)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"driver", "DB_DRIVER", "mysql"},
		{"failure rate", "REPORT_FAILURE_RATE", "1.5"},
		{"ttl", "ACCESS_TOKEN_TTL", "0s"},
		{"duration syntax", "REPORT_DELAY", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Parse(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}
