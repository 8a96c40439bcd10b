package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     string       `yaml:"server" json:"server"`
	Host       string       `yaml:"host" json:"host"`
	Port       int          `yaml:"port" json:"port"`
	Iterate    bool         `yaml:"iterate" json:"iterate"`
	Count      int          `yaml:"count" json:"count"`
	IntervalMs int          `yaml:"interval_ms" json:"interval_ms"`
	TimeoutMs  int          `yaml:"timeout_ms" json:"timeout_ms"`
	Proxy      *ProxyConfig `yaml:"proxy" json:"proxy"`
}

func defaultConfig() Config {
	return Config{
		Host:       "www.google.com",
		Port:       53,
		IntervalMs: 1000,
		TimeoutMs:  1000,
	}
}

func (this *Config) Validate() error {

	if this.Server == "" {
		return errors.New("server address is required")
	}

	if this.Port <= 0 || this.Port > 0xffff {
		return fmt.Errorf("invalid port: %d", this.Port)
	}

	if this.Count < 0 {
		return fmt.Errorf("invalid count: %d", this.Count)
	} else if this.IntervalMs < 0 {
		return fmt.Errorf("invalid interval: %d", this.IntervalMs)
	} else if this.TimeoutMs < 0 {
		return fmt.Errorf("invalid timeout: %d", this.TimeoutMs)
	}

	if this.Proxy != nil {
		if err := this.Proxy.Validate(); err != nil {
			return fmt.Errorf("proxy: %s", err.Error())
		}
	}

	return nil
}

type ProxyConfig struct {
	Addr     string `yaml:"addr" json:"addr"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

func (this *ProxyConfig) Validate() error {

	loadEnvValue(&this.Username)
	loadEnvValue(&this.Password)

	if this.Addr == "" {
		return errors.New("address is required")
	}

	if this.Port == 0 {
		this.Port = 1080
	} else if this.Port < 0 || this.Port > 0xffff {
		return fmt.Errorf("invalid port: %d", this.Port)
	}

	return nil
}

func loadConfigFile(path string, cfg *Config) error {

	file, err := os.OpenFile(path, os.O_RDONLY, os.ModePerm)
	if err != nil {
		return fmt.Errorf("unable to open file at '%s'", path)
	}

	defer file.Close()

	if strings.HasSuffix(path, ".yml") || strings.HasSuffix(path, ".yaml") {
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return fmt.Errorf("invalid config file: %s", err.Error())
		}
	} else if strings.HasSuffix(path, ".json") {
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return fmt.Errorf("invalid config file: %s", err.Error())
		}
	} else {
		return errors.New("unsupported config file format")
	}

	return nil
}

// loadEnvValue follows '$VAR' config indirections,
// letting credentials live in the environment instead of the file
func loadEnvValue(val *string) {

	if val == nil || *val == "" {
		return
	}

	key := strings.ToUpper(strings.TrimSpace(*val))
	if !strings.HasPrefix(key, "$") {
		return
	}

	slog.Debug(fmt.Sprintf("Config variable '%s' is loaded from env", key))

	*val = strings.TrimSpace(os.Getenv(strings.TrimPrefix(key, "$")))
}
