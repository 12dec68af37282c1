// Package config holds the server's startup configuration and the loaders
// that build it from command-line arguments and TOML or YAML files.
package config

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/ShazimR/myownwebserver/internal/logfile"
)

var (
	ErrMissingRoot     = fmt.Errorf("web root is required")
	ErrRootNotFound    = fmt.Errorf("web root not found")
	ErrInvalidAddress  = fmt.Errorf("invalid IP address")
	ErrInvalidPort     = fmt.Errorf("invalid port")
	ErrInvalidLogSize  = fmt.Errorf("invalid log size")
	ErrInvalidTimeout  = fmt.Errorf("invalid read timeout")
	ErrUnknownFormat   = fmt.Errorf("unknown config file format")
	ErrUnknownSettings = fmt.Errorf("unknown config settings")
)

type Config struct {
	Root    string `toml:"web_root" yaml:"web_root"`
	Address string `toml:"web_ip" yaml:"web_ip"`
	Port    int    `toml:"web_port" yaml:"web_port"`

	LogFile string `toml:"log_file" yaml:"log_file"`
	// Size after which the log file is rotated, e.g. "10MB". Empty or "0"
	// disables rotation.
	MaxLogSize string `toml:"max_log_size" yaml:"max_log_size"`
	// Deadline for the single request read. Zero waits forever.
	ReadTimeout time.Duration `toml:"read_timeout" yaml:"read_timeout"`
}

func Default() Config {
	return Config{
		LogFile: logfile.DefaultPath,
	}
}

// Load reads a TOML (.toml) or YAML (.yaml, .yml) file on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("%w in %s: %v", ErrUnknownSettings, path, undecoded)
		}

	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}

	default:
		return cfg, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	return cfg, nil
}

// LogSizeLimit returns MaxLogSize in bytes.
func (c Config) LogSizeLimit() (int64, error) {
	if c.MaxLogSize == "" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(c.MaxLogSize)
	if err != nil || n > 1<<62 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogSize, c.MaxLogSize)
	}
	return int64(n), nil
}

// IP returns the parsed bind address, or nil when it is not an IP literal.
func (c Config) IP() net.IP {
	return net.ParseIP(c.Address)
}

func (c Config) Validate() error {
	if c.Root == "" {
		return ErrMissingRoot
	}
	info, err := os.Stat(c.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotFound, c.Root)
	}

	if c.IP() == nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, c.Address)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}

	if _, err := c.LogSizeLimit(); err != nil {
		return err
	}

	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.ReadTimeout)
	}

	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("WebRoot=%s, WebIP=%s, WebPort=%d", c.Root, c.Address, c.Port)
}
