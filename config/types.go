package config

import "time"

// Config holds settings for both modes; only the section for the running
// mode is used.
type Config struct {
	LogLevel string       `mapstructure:"log_level"`
	Server   ServerConfig `mapstructure:"server"`
	Client   ClientConfig `mapstructure:"client"`
}

type ServerConfig struct {
	Name             string        `mapstructure:"name"`
	TCPPort          int           `mapstructure:"tcp_port"` // 0 lets the OS pick
	UDPPort          int           `mapstructure:"udp_port"`
	OfferInterval    time.Duration `mapstructure:"offer_interval"`
	BroadcastAddr    string        `mapstructure:"broadcast_addr"`
	APIAddr          string        `mapstructure:"api_addr"` // empty disables the status API
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
}

type ClientConfig struct {
	Name           string        `mapstructure:"name"`
	UDPPort        int           `mapstructure:"udp_port"`
	Rounds         int           `mapstructure:"rounds"` // 0 asks before each session
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	ListenTimeout  time.Duration `mapstructure:"listen_timeout"` // 0 waits forever
	Backoff        time.Duration `mapstructure:"backoff"`
}
