package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "LANJACK"

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("server.name", "Server")
	v.SetDefault("server.tcp_port", 0)
	v.SetDefault("server.udp_port", 13122)
	v.SetDefault("server.offer_interval", "1s")
	v.SetDefault("server.broadcast_addr", "255.255.255.255")
	v.SetDefault("server.api_addr", "")
	v.SetDefault("server.handshake_timeout", "10s")
	v.SetDefault("server.read_timeout", "10s")

	v.SetDefault("client.name", "Player")
	v.SetDefault("client.udp_port", 13122)
	v.SetDefault("client.rounds", 0)
	v.SetDefault("client.connect_timeout", "5s")
	v.SetDefault("client.read_timeout", "30s")
	v.SetDefault("client.listen_timeout", "0s")
	v.SetDefault("client.backoff", "1s")
}

// Load reads lanjack.yaml from configPath, "." or "config", then applies
// LANJACK_* environment overrides. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("lanjack")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("config")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	if err := validatePort("server.tcp_port", cfg.Server.TCPPort); err != nil {
		return err
	}
	if err := validatePort("server.udp_port", cfg.Server.UDPPort); err != nil {
		return err
	}
	if err := validatePort("client.udp_port", cfg.Client.UDPPort); err != nil {
		return err
	}
	if cfg.Server.OfferInterval <= 0 {
		return fmt.Errorf("server.offer_interval must be positive, got %s", cfg.Server.OfferInterval)
	}
	if cfg.Client.Rounds < 0 || cfg.Client.Rounds > 255 {
		return fmt.Errorf("client.rounds must be between 0 and 255, got %d", cfg.Client.Rounds)
	}
	if cfg.Server.HandshakeTimeout < 0 || cfg.Server.ReadTimeout < 0 ||
		cfg.Client.ConnectTimeout < 0 || cfg.Client.ReadTimeout < 0 ||
		cfg.Client.ListenTimeout < 0 || cfg.Client.Backoff < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func validatePort(key string, port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("%s must be between 0 and 65535, got %d", key, port)
	}
	return nil
}
