package config

import (
	"strings"
	"testing"
)

func TestParseConfig(t *testing.T) {
	data := []byte(`{
		"server": {"name": "requisition-service", "host": "0.0.0.0", "http_port": 9090},
		"auth": {"enabled": true, "jwt_secret": "s", "token_ttl_hours": 12},
		"approval": {"mark_vehicle_unavailable": true}
	}`)

	cfg, err := parseConfig(data)
	if err != nil {
		t.Fatalf("parseConfig: %v", err)
	}
	if cfg.Server.Name != "requisition-service" || cfg.Server.HTTPPort != 9090 {
		t.Fatalf("server section not parsed: %+v", cfg.Server)
	}
	if !cfg.Auth.Enabled || cfg.Auth.TokenTTL != 12 {
		t.Fatalf("auth section not parsed: %+v", cfg.Auth)
	}
	if !cfg.Approval.MarkVehicleUnavailable {
		t.Fatalf("approval section not parsed: %+v", cfg.Approval)
	}
}

func TestParseConfigRejectsBadJSON(t *testing.T) {
	if _, err := parseConfig([]byte(`{"server": `)); err == nil {
		t.Fatalf("expected parse error for truncated json")
	}
}

func TestLoadConfigFromConsulKVRequiresKey(t *testing.T) {
	_, err := LoadConfigFromConsulKV(ConsulConfig{Host: "localhost", Port: 8500}, "  ")
	if err == nil || !strings.Contains(err.Error(), "key is empty") {
		t.Fatalf("expected empty-key error, got %v", err)
	}
}
