package main

import (
	"testing"
)

func TestConfigValidate_NoServer(t *testing.T) {

	cfg := defaultConfig()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error for a missing server address")
	}
}

func TestConfigValidate_Defaults(t *testing.T) {

	cfg := defaultConfig()
	cfg.Server = "1.1.1.1"

	if err := cfg.Validate(); err != nil {
		t.Fatal("err", err)
	}

	if cfg.Host != "www.google.com" {
		t.Fatal("unexpected default host:", cfg.Host)
	} else if cfg.Port != 53 {
		t.Fatal("unexpected default port:", cfg.Port)
	} else if cfg.IntervalMs != 1000 || cfg.TimeoutMs != 1000 {
		t.Fatal("unexpected default timings:", cfg.IntervalMs, cfg.TimeoutMs)
	}
}

func TestConfigValidate_ProxyDefaultPort(t *testing.T) {

	cfg := defaultConfig()
	cfg.Server = "1.1.1.1"
	cfg.Proxy = &ProxyConfig{Addr: "127.0.0.1"}

	if err := cfg.Validate(); err != nil {
		t.Fatal("err", err)
	}

	if cfg.Proxy.Port != 1080 {
		t.Fatal("expected default proxy port 1080, got:", cfg.Proxy.Port)
	}
}

func TestLoadEnvValue(t *testing.T) {

	t.Setenv("TEST_SOCKS_PASSWORD", "hunter2")

	val := "$TEST_SOCKS_PASSWORD"
	loadEnvValue(&val)

	if val != "hunter2" {
		t.Fatal("expected: hunter2 got:", val)
	}

	plain := "not-a-reference"
	loadEnvValue(&plain)

	if plain != "not-a-reference" {
		t.Fatal("expected the value to stay untouched, got:", plain)
	}
}
