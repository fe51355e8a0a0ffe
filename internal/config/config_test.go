package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %q", cfg.Server.Addr)
	}
	if cfg.Gateway.Provider != "http" {
		t.Fatalf("unexpected default provider: %q", cfg.Gateway.Provider)
	}
	if cfg.Gateway.Stream {
		t.Fatal("streaming must default to off")
	}
	if cfg.Orchestration.OnboardingPersona != "Alex Generalis" {
		t.Fatalf("unexpected onboarding persona: %q", cfg.Orchestration.OnboardingPersona)
	}
	if cfg.Orchestration.FanoutPartial {
		t.Fatal("partial fan-out must default to off")
	}
}

func TestLoadPortForms(t *testing.T) {
	t.Setenv("PORT", "9999")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("unexpected addr: %q", cfg.Server.Addr)
	}

	t.Setenv("PORT", "127.0.0.1:9000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("host:port form must pass through, got %q", cfg.Server.Addr)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("GATEWAY_PROVIDER", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	t.Setenv("GATEWAY_PROVIDER", "http")

	t.Setenv("GATEWAY_MAX_RETRIES", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative retries")
	}
	t.Setenv("GATEWAY_MAX_RETRIES", "")

	t.Setenv("FANOUT_PARTIAL", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-bool flag")
	}
}
