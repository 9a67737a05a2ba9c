package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestParseEnvOverridesFlags(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("RUN_ADDRESS", ":9090")

	cfg, err := parse([]string{"-a", ":7070", "-s", "from-flag", "-redis", "localhost:6379"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.RunAddress != ":9090" {
		t.Errorf("RunAddress = %q, want env value", cfg.RunAddress)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("JWTSecret = %q, want env value", cfg.JWTSecret)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want flag value", cfg.RedisAddr)
	}
	if cfg.MongoDatabase != "cropcart" {
		t.Errorf("MongoDatabase = %q, want default", cfg.MongoDatabase)
	}
}

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := parse(nil); err == nil {
		t.Error("expected error without a jwt secret")
	}
}

func TestParseFarmwatch(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		wantErr  bool
		interval time.Duration
	}{
		{
			name:     "defaults",
			env:      map[string]string{"FARMER_EMAIL": "f@example.com", "FARMER_PASSWORD": "pw"},
			interval: 60 * time.Second,
		},
		{
			name:     "env interval",
			env:      map[string]string{"FARMER_EMAIL": "f@example.com", "FARMER_PASSWORD": "pw", "POLL_INTERVAL": "15s"},
			interval: 15 * time.Second,
		},
		{
			name:    "bad interval",
			env:     map[string]string{"FARMER_EMAIL": "f@example.com", "FARMER_PASSWORD": "pw", "POLL_INTERVAL": "soon"},
			wantErr: true,
		},
		{
			name:    "missing credentials",
			env:     map[string]string{"FARMER_PASSWORD": ""},
			args:    []string{"-email", "f@example.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := parseFarmwatch(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFarmwatch: %v", err)
			}
			if cfg.PollInterval != tt.interval {
				t.Errorf("PollInterval = %s, want %s", cfg.PollInterval, tt.interval)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := SlogLevel(in); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
