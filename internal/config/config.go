package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/zusictl/internal/protocol/session"
)

// ClientConfig is the zusictl client configuration.
type ClientConfig struct {
	Address            string
	ClientName         string
	ClientVersion      string
	CabDisplays        []uint16
	ProgramData        []uint16
	CabOperation       bool
	ConnectTimeout     time.Duration
	HandshakeTimeout   time.Duration
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	MaxConnectAttempts int
	MetricsAddr        string
}

// zusictl.toml key mapping to ClientConfig.
type fileConfig struct {
	Address            string   `toml:"address"`
	ClientName         string   `toml:"client_name"`
	ClientVersion      string   `toml:"client_version"`
	CabDisplays        []uint16 `toml:"cab_displays"`
	ProgramData        []uint16 `toml:"program_data"`
	CabOperation       bool     `toml:"cab_operation"`
	ConnectTimeout     string   `toml:"connect_timeout"`
	HandshakeTimeout   string   `toml:"handshake_timeout"`
	ReadTimeout        string   `toml:"read_timeout"`
	WriteTimeout       string   `toml:"write_timeout"`
	MaxConnectAttempts int      `toml:"max_connect_attempts"`
	MetricsAddr        string   `toml:"metrics_addr"`
}

func DefaultClientConfig() ClientConfig {
	base := session.DefaultClientConfig()
	return ClientConfig{
		Address:            base.Address,
		ClientName:         base.ClientName,
		ClientVersion:      base.ClientVersion,
		ConnectTimeout:     base.Session.ConnectTimeout,
		HandshakeTimeout:   base.Session.HandshakeTimeout,
		ReadTimeout:        base.Session.ReadTimeout,
		WriteTimeout:       base.Session.WriteTimeout,
		MaxConnectAttempts: base.MaxConnectAttempts,
	}
}

// LoadClientConfig overlays the file at path on DefaultClientConfig.
func LoadClientConfig(path string) (ClientConfig, error) {
	return Load(path, DefaultClientConfig())
}

// Load overlays the keys defined in the file at path on base and validates
// the result.
func Load(path string, base ClientConfig) (ClientConfig, error) {
	cfg := base

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load zusictl config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return ClientConfig{}, fmt.Errorf("load zusictl config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("client_name") {
		cfg.ClientName = strings.TrimSpace(raw.ClientName)
	}
	if meta.IsDefined("client_version") {
		cfg.ClientVersion = strings.TrimSpace(raw.ClientVersion)
	}
	if meta.IsDefined("cab_displays") {
		cfg.CabDisplays = raw.CabDisplays
	}
	if meta.IsDefined("program_data") {
		cfg.ProgramData = raw.ProgramData
	}
	if meta.IsDefined("cab_operation") {
		cfg.CabOperation = raw.CabOperation
	}
	durations := []struct {
		key string
		raw string
		out *time.Duration
	}{
		{"connect_timeout", raw.ConnectTimeout, &cfg.ConnectTimeout},
		{"handshake_timeout", raw.HandshakeTimeout, &cfg.HandshakeTimeout},
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"write_timeout", raw.WriteTimeout, &cfg.WriteTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return ClientConfig{}, fmt.Errorf("load zusictl config: %s: %w", d.key, err)
		}
		*d.out = v
	}
	if meta.IsDefined("max_connect_attempts") {
		cfg.MaxConnectAttempts = raw.MaxConnectAttempts
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if err := cfg.Validate(); err != nil {
		return ClientConfig{}, fmt.Errorf("load zusictl config: %w", err)
	}
	return cfg, nil
}

// Validate checks addresses, names and timeouts.
func (c ClientConfig) Validate() error {
	if strings.TrimSpace(c.Address) == "" {
		return session.ErrAddressRequired
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("invalid address %q: %w", c.Address, err)
	}
	if strings.TrimSpace(c.ClientName) == "" {
		return session.ErrClientNameRequired
	}
	if c.ConnectTimeout < 0 || c.HandshakeTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.MaxConnectAttempts < 0 {
		return fmt.Errorf("max_connect_attempts must not be negative, got %d", c.MaxConnectAttempts)
	}
	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics_addr %q: %w", c.MetricsAddr, err)
		}
	}
	return nil
}

// Session converts the file settings to the session client configuration.
func (c ClientConfig) Session() session.ClientConfig {
	out := session.DefaultClientConfig()
	out.Address = c.Address
	out.ClientName = c.ClientName
	out.ClientVersion = c.ClientVersion
	out.MaxConnectAttempts = c.MaxConnectAttempts
	out.Session.ConnectTimeout = c.ConnectTimeout
	out.Session.HandshakeTimeout = c.HandshakeTimeout
	out.Session.ReadTimeout = c.ReadTimeout
	out.Session.WriteTimeout = c.WriteTimeout
	return out
}

// Subscription returns the NEEDED_DATA selection.
func (c ClientConfig) Subscription() session.Subscription {
	return session.Subscription{
		CabDisplays:  c.CabDisplays,
		ProgramData:  c.ProgramData,
		CabOperation: c.CabOperation,
	}
}
