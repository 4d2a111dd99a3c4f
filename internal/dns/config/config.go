package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/haukened/rr-anchor/internal/dns/domain"
)

// EnvPrefix is stripped from environment variable names before they are
// matched to configuration keys, e.g. ANCHOR_LOG_LEVEL -> log_level.
const EnvPrefix = "ANCHOR_"

// AppConfig holds configuration values parsed from environment variables.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env string `koanf:"env" validate:"required,oneof=dev prod"`

	// LogLevel controls log verbosity: "debug", "info", "warn", or "error".
	LogLevel string `koanf:"log_level" validate:"required,oneof=debug info warn error"`

	// Owner is the address installed as registry owner when the store has none yet.
	Owner string `koanf:"owner" validate:"omitempty,address"`

	// Address is the registry's own address, returned by resolver lookups.
	Address string `koanf:"address" validate:"required,address"`

	// RecordTTL is written into every TXT record the registry builds.
	RecordTTL uint32 `koanf:"record_ttl" validate:"lte=2147483647"`

	StoreBackend string `koanf:"store_backend" validate:"required,oneof=memory bolt sqlite"`
	StorePath    string `koanf:"store_path" validate:"required_unless=StoreBackend memory"`

	// CacheSize bounds the entry LRU. Zero disables caching.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	BloomCapacity uint    `koanf:"bloom_capacity" validate:"required,gte=1"`
	BloomFPRate   float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`

	// Listen is the host:port of the HTTP lookup API.
	Listen string `koanf:"listen" validate:"required,hostname_port"`

	// SeedFile optionally points at a YAML, JSON or TOML file of anchors applied at startup.
	SeedFile string `koanf:"seed_file"`
}

// DEFAULT_APP_CONFIG defines the default application configuration settings.
var DEFAULT_APP_CONFIG = AppConfig{
	Env:           "prod",
	LogLevel:      "info",
	Address:       "0x0000000000000000000000000000000000000000",
	RecordTTL:     3600,
	StoreBackend:  "bolt",
	StorePath:     "/var/lib/rr-anchor/anchors.db",
	CacheSize:     1000,
	BloomCapacity: 100000,
	BloomFPRate:   0.01,
	Listen:        "127.0.0.1:8053",
}

// validAddress reports whether the field holds 20 bytes of hex, optionally 0x prefixed.
func validAddress(fl validator.FieldLevel) bool {
	_, err := domain.ParseAddress(fl.Field().String())
	return err == nil
}

// envLoader loads environment variables with the ANCHOR_ prefix.
// It can be replaced in tests.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return key, strings.TrimSpace(value)
		},
	}), nil)
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// registerValidation registers the custom "address" tag.
var registerValidation = func(v *validator.Validate) error {
	return v.RegisterValidation("address", validAddress)
}

// Load parses environment variables and returns an AppConfig instance.
// It applies default values and runs validation automatically.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
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

// OwnerAddress returns the configured owner, if any.
func (c *AppConfig) OwnerAddress() (domain.Address, bool) {
	if c.Owner == "" {
		return domain.Address{}, false
	}
	a, err := domain.ParseAddress(c.Owner)
	return a, err == nil
}

// RegistryAddress returns the parsed registry address. Load has already validated it.
func (c *AppConfig) RegistryAddress() domain.Address {
	a, _ := domain.ParseAddress(c.Address)
	return a
}
