package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks the environment variables read by Load.
const EnvPrefix = "DNS_BLOCK_"

// SkipInput is the file argument that stands for "no file".
const SkipInput = "-"

// AppConfig holds the settings of one dns-block run.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Resolver is the recursive DNS server queried for whitelist CNAMEs, in ip:port format.
	Resolver string `koanf:"resolver" validate:"required,ip_port"`

	// Blocklist, Whitelist and Personal are the input files. Whitelist and
	// Personal may be "-" to skip them. Existence is left to the reader so
	// a missing file surfaces as the OS error.
	Blocklist string `koanf:"blocklist" validate:"required,ne=-"`
	Whitelist string `koanf:"whitelist" validate:"required"`
	Personal  string `koanf:"personal" validate:"required"`

	// Timing reports phase durations after a run.
	Timing bool `koanf:"timing"`

	// CacheSize is the decision cache capacity used by pipe. 0 disables it.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// BloomFPRate is the target false-positive rate of the pipe pre-filter.
	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`

	// Filter limits pipe annotations to these client addresses.
	Filter []string `koanf:"filter" validate:"omitempty,dive,ip"`
}

// DEFAULT_APP_CONFIG defines the defaults every other layer overrides.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:         "prod",
	LogLevel:    "error",
	Resolver:    "8.8.8.8:53",
	Whitelist:   SkipInput,
	Personal:    SkipInput,
	CacheSize:   10000,
	BloomFPRate: 0.01,
}

// LoadOptions selects the optional layers.
type LoadOptions struct {
	// File is a TOML file loaded after the defaults. Empty means none.
	File string
	// Overrides are applied last, keyed by koanf tag. Typically set from CLI flags.
	Overrides map[string]any
}

// validIPPort validates whether the provided field value is a valid IP address and port combination.
// It expects the value to be in the format "IP:Port".
func validIPPort(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	ip, port, err := net.SplitHostPort(addr)
	if err != nil || ip == "" || port == "" {
		return false
	}
	if net.ParseIP(ip) == nil {
		return false
	}
	portNum, err := strconv.ParseUint(port, 10, 16)
	return err == nil && portNum > 0 && portNum < 65536
}

// envLoader loads environment variables with the prefix "DNS_BLOCK_".
// It transforms the keys to lowercase and removes the prefix, and can be
// mocked in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			value = strings.TrimSpace(value)

			if value == "" {
				return key, value
			}

			// only the client filter is a list
			if key == "filter" {
				return key, strings.FieldsFunc(value, func(r rune) bool {
					return r == ' ' || r == ','
				})
			}

			return key, value
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader loads a TOML config file.
var fileLoader = func(k *koanf.Koanf, path string) error {
	return k.Load(file.Provider(path), toml.Parser())
}

// registerValidation registers the custom "ip_port" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("ip_port", validIPPort)
}

// Load builds an AppConfig from, in increasing precedence: defaults, the
// optional TOML file, DNS_BLOCK_* environment variables and explicit
// overrides. The result is validated before it is returned.
func Load(opts LoadOptions) (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	if opts.File != "" {
		if err := fileLoader(k, opts.File); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", opts.File, err)
		}
	}

	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("error loading overrides: %w", err)
		}
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := registerValidation(validate); err != nil {
		return nil, fmt.Errorf("error registering validation: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	return &cfg, nil
}
