package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDuration_UnmarshalJSON_String(t *testing.T) {
	var d Duration
	err := json.Unmarshal([]byte(`"30s"`), &d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != 30*time.Second {
		t.Errorf("expected 30s, got %v", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_Number(t *testing.T) {
	var d Duration
	err := json.Unmarshal([]byte(`10`), &d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != 10*time.Second {
		t.Errorf("expected 10s, got %v", d.Duration)
	}
}

func TestDuration_UnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	err := json.Unmarshal([]byte(`"not-a-duration"`), &d)
	if err == nil {
		t.Fatal("expected error for invalid duration string")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clawlink.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"gateway":{"host":"gw.local","port":18789}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Client.ID != "clawlink" {
		t.Errorf("expected default client id, got %s", cfg.Client.ID)
	}
	if cfg.Client.Mode != "backend" {
		t.Errorf("expected default mode backend, got %s", cfg.Client.Mode)
	}
	if cfg.Gateway.RequestTimeout.Duration != 15*time.Second {
		t.Errorf("expected default request timeout 15s, got %v", cfg.Gateway.RequestTimeout.Duration)
	}
	if cfg.Gateway.ChatSendTimeout.Duration != 35*time.Second {
		t.Errorf("expected default chat send timeout 35s, got %v", cfg.Gateway.ChatSendTimeout.Duration)
	}
}

func TestLoad_MissingHost(t *testing.T) {
	path := writeConfig(t, `{"gateway":{"port":18789}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing gateway.host")
	}
}

func TestLoad_BadPort(t *testing.T) {
	path := writeConfig(t, `{"gateway":{"host":"gw.local","port":99999}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "clawlink.json")
	cfg := &Config{}
	cfg.Gateway.Host = "gw.local"
	cfg.Gateway.Port = 18789
	cfg.Gateway.UseTLS = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Gateway.Host != "gw.local" || loaded.Gateway.Port != 18789 || !loaded.Gateway.UseTLS {
		t.Errorf("round-trip mismatch: %+v", loaded.Gateway)
	}
}
