package conf

import (
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/nickyhof/DemoDB/logger"
	"github.com/nickyhof/DemoDB/ps"
	"github.com/nickyhof/DemoDB/service"
)

/*
[server]
bind_address = 127.0.0.1
port         = 3306

[demo]
latency       = 300ms
database      =
stop_on_error = false
journal       = true

[backend]
url            =
timeout        = 5s
health_timeout = 1.5s

[logs]
level     = info
info_log  =
error_log =

[auth]
enabled     = false
jwt_secret  =
issuer      =
audience    =
name_claim  = name
email_claim = email

[seed]
source        =
s3_region     =
s3_endpoint   =
s3_access_key =
s3_secret_key =
*/
type Cfg struct {
	Raw *ini.File

	// server
	BindAddress string
	Port        int

	// demo
	Latency     time.Duration
	Database    string
	StopOnError bool
	Journal     bool

	// backend
	BackendURL    string
	Timeout       time.Duration
	HealthTimeout time.Duration

	// logs
	LogLevel string
	LogInfos string
	LogError string

	Auth AuthConfig
	Seed SeedConfig
}

type AuthConfig struct {
	Enabled    bool
	JWTSecret  string
	Issuer     string
	Audience   string
	NameClaim  string
	EmailClaim string
}

type SeedConfig struct {
	// Source is a local path or a file://, http(s):// or s3:// URL. Empty
	// means the built-in demo data.
	Source string
	S3     ps.S3Config
}

func NewCfg() *Cfg {
	return &Cfg{
		Raw:           ini.Empty(),
		BindAddress:   "127.0.0.1",
		Port:          3306,
		Latency:       300 * time.Millisecond,
		Journal:       true,
		Timeout:       5 * time.Second,
		HealthTimeout: 1500 * time.Millisecond,
		LogLevel:      "info",
		Auth: AuthConfig{
			NameClaim:  "name",
			EmailClaim: "email",
		},
	}
}

// Load reads path over the defaults. A missing file keeps the defaults.
func Load(path string) (*Cfg, error) {
	cfg := NewCfg()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debugf("config file %s not found, using defaults", path)
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config %s", path)
	}
	if err := cfg.apply(iniFile); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Parse reads ini text over the defaults.
func Parse(data []byte) (*Cfg, error) {
	iniFile, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	cfg := NewCfg()
	if err := cfg.apply(iniFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Cfg) apply(iniFile *ini.File) error {
	cfg.Raw = iniFile
	for _, parse := range []func() error{
		cfg.parseServerCfg,
		cfg.parseDemoCfg,
		cfg.parseBackendCfg,
		cfg.parseLogsCfg,
		cfg.parseAuthCfg,
		cfg.parseSeedCfg,
	} {
		if err := parse(); err != nil {
			return err
		}
	}
	return nil
}

func (cfg *Cfg) section(name string) *ini.Section {
	return cfg.Raw.Section(name)
}

func (cfg *Cfg) parseServerCfg() error {
	section := cfg.section("server")
	cfg.BindAddress = valueAsString(section, "bind_address", cfg.BindAddress)
	if net.ParseIP(cfg.BindAddress) == nil && cfg.BindAddress != "localhost" {
		return errors.Errorf("invalid bind_address %q", cfg.BindAddress)
	}
	cfg.Port = section.Key("port").MustInt(cfg.Port)
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.Errorf("invalid port %d", cfg.Port)
	}
	return nil
}

func (cfg *Cfg) parseDemoCfg() error {
	section := cfg.section("demo")
	var err error
	if cfg.Latency, err = durationValue(section, "latency", cfg.Latency); err != nil {
		return err
	}
	cfg.Database = valueAsString(section, "database", cfg.Database)
	cfg.StopOnError = section.Key("stop_on_error").MustBool(cfg.StopOnError)
	cfg.Journal = section.Key("journal").MustBool(cfg.Journal)
	return nil
}

func (cfg *Cfg) parseBackendCfg() error {
	section := cfg.section("backend")
	var err error
	cfg.BackendURL = valueAsString(section, "url", cfg.BackendURL)
	if cfg.Timeout, err = durationValue(section, "timeout", cfg.Timeout); err != nil {
		return err
	}
	if cfg.HealthTimeout, err = durationValue(section, "health_timeout", cfg.HealthTimeout); err != nil {
		return err
	}
	return nil
}

func (cfg *Cfg) parseLogsCfg() error {
	section := cfg.section("logs")
	cfg.LogLevel = valueAsString(section, "level", cfg.LogLevel)
	cfg.LogInfos = valueAsString(section, "info_log", cfg.LogInfos)
	cfg.LogError = valueAsString(section, "error_log", cfg.LogError)
	return nil
}

func (cfg *Cfg) parseAuthCfg() error {
	section := cfg.section("auth")
	cfg.Auth.Enabled = section.Key("enabled").MustBool(cfg.Auth.Enabled)
	cfg.Auth.JWTSecret = valueAsString(section, "jwt_secret", cfg.Auth.JWTSecret)
	cfg.Auth.Issuer = valueAsString(section, "issuer", cfg.Auth.Issuer)
	cfg.Auth.Audience = valueAsString(section, "audience", cfg.Auth.Audience)
	cfg.Auth.NameClaim = valueAsString(section, "name_claim", cfg.Auth.NameClaim)
	cfg.Auth.EmailClaim = valueAsString(section, "email_claim", cfg.Auth.EmailClaim)
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return errors.New("auth enabled without jwt_secret")
	}
	return nil
}

func (cfg *Cfg) parseSeedCfg() error {
	section := cfg.section("seed")
	cfg.Seed.Source = valueAsString(section, "source", cfg.Seed.Source)
	cfg.Seed.S3.Region = valueAsString(section, "s3_region", cfg.Seed.S3.Region)
	cfg.Seed.S3.Endpoint = valueAsString(section, "s3_endpoint", cfg.Seed.S3.Endpoint)
	cfg.Seed.S3.AccessKey = valueAsString(section, "s3_access_key", cfg.Seed.S3.AccessKey)
	cfg.Seed.S3.SecretKey = valueAsString(section, "s3_secret_key", cfg.Seed.S3.SecretKey)
	return nil
}

// LogConfig is the logger setup described by the [logs] section.
func (cfg *Cfg) LogConfig() logger.LogConfig {
	return logger.LogConfig{
		ErrorLogPath: cfg.LogError,
		InfoLogPath:  cfg.LogInfos,
		LogLevel:     cfg.LogLevel,
	}
}

// ServiceConfig is the client setup described by [backend] and [demo].
func (cfg *Cfg) ServiceConfig() service.Config {
	return service.Config{
		BaseURL:       cfg.BackendURL,
		Timeout:       cfg.Timeout,
		HealthTimeout: cfg.HealthTimeout,
		Latency:       cfg.Latency,
		StopOnError:   cfg.StopOnError,
	}
}

func (cfg *Cfg) ListenAddress() string {
	return net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port))
}

func valueAsString(section *ini.Section, keyName string, defaultValue string) string {
	if !section.HasKey(keyName) {
		return defaultValue
	}
	value := section.Key(keyName).String()
	if value == "" {
		return defaultValue
	}
	return value
}

func durationValue(section *ini.Section, keyName string, defaultValue time.Duration) (time.Duration, error) {
	value := valueAsString(section, keyName, "")
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s.%s", section.Name(), keyName)
	}
	return d, nil
}
