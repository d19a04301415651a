// Package settings loads the netdbctl agent configuration.
//
// Values come from a YAML file (default ~/.netdbctl/config.yaml),
// environment variables prefixed NETDBCTL_ (NETDBCTL_NETDB_URL for
// netdb.url) and built-in defaults, in that order of precedence after the
// environment.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/erikjseidel/salt-netdb/pkg/netdb"
	"github.com/erikjseidel/salt-netdb/pkg/util"
	"github.com/erikjseidel/salt-netdb/pkg/vyos"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "NETDBCTL"

// NetdbSettings locate the netdb and netdb-util services.
type NetdbSettings struct {
	ID      string        `mapstructure:"id" yaml:"id"`
	URL     string        `mapstructure:"url" yaml:"url"`
	UtilURL string        `mapstructure:"util_url" yaml:"util_url"`
	Key     string        `mapstructure:"key" yaml:"key"`
	CA      string        `mapstructure:"ca" yaml:"ca"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LocalSettings describe an optional netdb instance on the proxy host.
type LocalSettings struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	URL     string `mapstructure:"url" yaml:"url"`
}

// RedisSettings locate the overlay store.
type RedisSettings struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	DB   int    `mapstructure:"db" yaml:"db"`
}

// DeviceSettings hold the router login.
type DeviceSettings struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	OS       string `mapstructure:"os" yaml:"os"`
}

// AuditSettings locate the audit log.
type AuditSettings struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Settings is the full agent configuration.
type Settings struct {
	Netdb      NetdbSettings  `mapstructure:"netdb" yaml:"netdb"`
	NetdbLocal LocalSettings  `mapstructure:"netdb_local" yaml:"netdb_local"`
	Redis      RedisSettings  `mapstructure:"redis" yaml:"redis"`
	Device     DeviceSettings `mapstructure:"device" yaml:"device"`
	Audit      AuditSettings  `mapstructure:"audit" yaml:"audit"`
}

var keys = []string{
	"audit.file",
	"device.host",
	"device.os",
	"device.password",
	"device.port",
	"device.user",
	"netdb.ca",
	"netdb.id",
	"netdb.key",
	"netdb.timeout",
	"netdb.url",
	"netdb.util_url",
	"netdb_local.enabled",
	"netdb_local.url",
	"redis.addr",
	"redis.db",
}

// Keys returns the settable keys in sorted order.
func Keys() []string {
	return append([]string(nil), keys...)
}

func setDefaults(v *viper.Viper) {
	for _, k := range keys {
		v.SetDefault(k, "")
	}
	v.SetDefault("netdb.timeout", netdb.DefaultTimeout)
	v.SetDefault("netdb_local.enabled", false)
	v.SetDefault("netdb_local.url", "http://127.0.0.1:8001/api/")
	v.SetDefault("redis.addr", "172.17.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("device.port", vyos.DefaultSSHPort)
	v.SetDefault("device.user", "vyos")
	v.SetDefault("device.os", "vyos")
}

// DefaultSettingsPath returns the default path for the configuration file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "netdbctl.yaml"
	}
	return filepath.Join(home, ".netdbctl", "config.yaml")
}

// DefaultAuditPath returns the audit log used when audit.file is empty.
func DefaultAuditPath() string {
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from path. A missing file yields the defaults with
// environment overrides applied.
func LoadFrom(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			util.WithField("path", path).Debug("No settings file, using defaults")
		default:
			return nil, err
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.Netdb.ID = util.NormalizeSetID(s.Netdb.ID)
	return s, nil
}

// SaveTo writes settings to path, replacing the file atomically.
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// Set assigns one dotted key from its string form.
func (s *Settings) Set(key, value string) error {
	var err error
	switch key {
	case "netdb.id":
		s.Netdb.ID = util.NormalizeSetID(value)
	case "netdb.url":
		s.Netdb.URL = value
	case "netdb.util_url":
		s.Netdb.UtilURL = value
	case "netdb.key":
		s.Netdb.Key = value
	case "netdb.ca":
		s.Netdb.CA = value
	case "netdb.timeout":
		s.Netdb.Timeout, err = time.ParseDuration(value)
	case "netdb_local.enabled":
		s.NetdbLocal.Enabled, err = strconv.ParseBool(value)
	case "netdb_local.url":
		s.NetdbLocal.URL = value
	case "redis.addr":
		s.Redis.Addr = value
	case "redis.db":
		s.Redis.DB, err = strconv.Atoi(value)
	case "device.host":
		s.Device.Host = value
	case "device.port":
		s.Device.Port, err = strconv.Atoi(value)
	case "device.user":
		s.Device.User = value
	case "device.password":
		s.Device.Password = value
	case "device.os":
		s.Device.OS = value
	case "audit.file":
		s.Audit.File = value
	default:
		return util.NewValidationError(fmt.Sprintf("%s: unknown setting", key))
	}
	if err != nil {
		return util.NewValidationError(fmt.Sprintf("%s: %v", key, err))
	}
	return nil
}

// Get returns one dotted key in the string form Set accepts. The device
// password is masked.
func (s *Settings) Get(key string) (string, error) {
	switch key {
	case "netdb.id":
		return s.Netdb.ID, nil
	case "netdb.url":
		return s.Netdb.URL, nil
	case "netdb.util_url":
		return s.Netdb.UtilURL, nil
	case "netdb.key":
		return s.Netdb.Key, nil
	case "netdb.ca":
		return s.Netdb.CA, nil
	case "netdb.timeout":
		return s.Netdb.Timeout.String(), nil
	case "netdb_local.enabled":
		return strconv.FormatBool(s.NetdbLocal.Enabled), nil
	case "netdb_local.url":
		return s.NetdbLocal.URL, nil
	case "redis.addr":
		return s.Redis.Addr, nil
	case "redis.db":
		return strconv.Itoa(s.Redis.DB), nil
	case "device.host":
		return s.Device.Host, nil
	case "device.port":
		return strconv.Itoa(s.Device.Port), nil
	case "device.user":
		return s.Device.User, nil
	case "device.password":
		if s.Device.Password == "" {
			return "", nil
		}
		return "********", nil
	case "device.os":
		return s.Device.OS, nil
	case "audit.file":
		return s.Audit.File, nil
	}
	return "", util.NewValidationError(fmt.Sprintf("%s: unknown setting", key))
}

// Validate checks the settings every command needs.
func (s *Settings) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(s.Netdb.ID != "", "netdb.id: required")
	v.Add(s.Netdb.URL != "", "netdb.url: required")
	for _, f := range []struct{ key, raw string }{
		{"netdb.url", s.Netdb.URL},
		{"netdb.util_url", s.Netdb.UtilURL},
		{"netdb_local.url", s.NetdbLocal.URL},
	} {
		if f.raw == "" {
			continue
		}
		if u, err := url.Parse(f.raw); err != nil || u.Scheme == "" || u.Host == "" {
			v.AddErrorf("%s: invalid URL %q", f.key, f.raw)
		}
	}
	v.Add(s.Netdb.Timeout >= 0, "netdb.timeout: must not be negative")
	v.Add(s.Redis.Addr != "", "redis.addr: required")
	v.Add(s.Redis.DB >= 0 && s.Redis.DB <= 15, "redis.db: must be between 0 and 15")
	return v.Build()
}

// ValidateDevice checks the settings needed to log in to the router.
func (s *Settings) ValidateDevice() error {
	v := &util.ValidationBuilder{}
	v.Add(s.Device.Host != "", "device.host: required")
	v.Add(s.Device.User != "", "device.user: required")
	v.Add(s.Device.Port > 0 && s.Device.Port <= 65535, "device.port: must be between 1 and 65535")
	return v.Build()
}

// NetdbConfig returns the client configuration for both netdb services.
func (s *Settings) NetdbConfig() netdb.Config {
	return netdb.Config{
		URL:          s.Netdb.URL,
		UtilURL:      s.Netdb.UtilURL,
		LocalURL:     s.NetdbLocal.URL,
		LocalEnabled: s.NetdbLocal.Enabled,
		Key:          expandHome(s.Netdb.Key),
		CA:           expandHome(s.Netdb.CA),
		Timeout:      s.Netdb.Timeout,
	}
}

// SSHConfig returns the router login.
func (s *Settings) SSHConfig() vyos.SSHConfig {
	return vyos.SSHConfig{
		Host:     s.Device.Host,
		Port:     s.Device.Port,
		User:     s.Device.User,
		Password: s.Device.Password,
	}
}

// AuditFile returns the audit log path with a leading ~ expanded.
func (s *Settings) AuditFile() string {
	if s.Audit.File == "" {
		return DefaultAuditPath()
	}
	return expandHome(s.Audit.File)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
