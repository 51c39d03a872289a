package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected info, actual %s", cfg.LogLevel)
	}
	if cfg.Server.UDPPort != 13122 || cfg.Client.UDPPort != 13122 {
		t.Fatalf("unexpected udp ports %d/%d", cfg.Server.UDPPort, cfg.Client.UDPPort)
	}
	if cfg.Server.TCPPort != 0 || cfg.Server.OfferInterval != time.Second {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Server.BroadcastAddr != "255.255.255.255" || cfg.Server.APIAddr != "" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Client.Rounds != 0 || cfg.Client.ListenTimeout != 0 || cfg.Client.Backoff != time.Second {
		t.Fatalf("unexpected client config %+v", cfg.Client)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
log_level: debug
server:
  name: Lucky Seven
  tcp_port: 4000
  offer_interval: 250ms
  api_addr: localhost:8080
client:
  name: Alice
  rounds: 5
  listen_timeout: 30s
`
	if err := os.WriteFile(filepath.Join(dir, "lanjack.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug, actual %s", cfg.LogLevel)
	}
	if cfg.Server.Name != "Lucky Seven" || cfg.Server.TCPPort != 4000 ||
		cfg.Server.OfferInterval != 250*time.Millisecond || cfg.Server.APIAddr != "localhost:8080" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	// Unset keys keep their defaults.
	if cfg.Server.UDPPort != 13122 {
		t.Fatalf("expected default udp port, actual %d", cfg.Server.UDPPort)
	}
	if cfg.Client.Name != "Alice" || cfg.Client.Rounds != 5 || cfg.Client.ListenTimeout != 30*time.Second {
		t.Fatalf("unexpected client config %+v", cfg.Client)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LANJACK_SERVER_NAME", "FromEnv")
	t.Setenv("LANJACK_CLIENT_ROUNDS", "9")
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Name != "FromEnv" || cfg.Client.Rounds != 9 {
		t.Fatalf("env not applied: %+v %+v", cfg.Server, cfg.Client)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"port":     "server:\n  udp_port: 70000\n",
		"interval": "server:\n  offer_interval: 0s\n",
		"rounds":   "client:\n  rounds: 256\n",
		"timeout":  "client:\n  backoff: -1s\n",
		"syntax":   "server: [\n",
	}
	for name, yaml := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "lanjack.yaml"), []byte(yaml), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(dir); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
