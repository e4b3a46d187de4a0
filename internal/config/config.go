package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so intervals read naturally in YAML ("12h", "30s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	ServiceName string `yaml:"service_name"`
	Env         string `yaml:"env"`
	ListenAddr  string `yaml:"listen_addr"`
	DataDir     string `yaml:"data_dir"`

	Currency string `yaml:"currency"`

	Cart     Cart     `yaml:"cart"`
	Locales  Locales  `yaml:"locales"`
	Reassort Reassort `yaml:"reassort"`
}

type Cart struct {
	// StoragePrefix namespaces the per-owner cart slots in local storage.
	StoragePrefix string `yaml:"storage_prefix"`
	// WholesaleMinQuantity is the line-quantity floor applied once a
	// validated professional identity is attached to the cart.
	WholesaleMinQuantity int `yaml:"wholesale_min_quantity"`
}

type Locales struct {
	Default   string   `yaml:"default"`
	Supported []string `yaml:"supported"`
}

type Reassort struct {
	ScanInterval Duration `yaml:"scan_interval"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		ServiceName: "storefront",
		Env:         "dev",
		ListenAddr:  ":8080",
		DataDir:     "./data",
		Currency:    "EUR",
		Cart: Cart{
			StoragePrefix:        "cart",
			WholesaleMinQuantity: 100,
		},
		Locales: Locales{
			Default:   "fr",
			Supported: []string{"fr", "en", "es-PE"},
		},
		Reassort: Reassort{
			ScanInterval: Duration(time.Minute),
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment
// overrides. An empty path skips the file and yields defaults + env.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ServiceName = getenvDefault("SERVICE_NAME", cfg.ServiceName)
	cfg.Env = getenvDefault("ENV", cfg.Env)
	cfg.ListenAddr = getenvDefault("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DataDir = getenvDefault("DATA_DIR", cfg.DataDir)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Cart.WholesaleMinQuantity < 1 {
		return fmt.Errorf("cart.wholesale_min_quantity must be at least 1, got %d", c.Cart.WholesaleMinQuantity)
	}
	if c.Locales.Default == "" {
		return fmt.Errorf("locales.default is required")
	}
	if c.Reassort.ScanInterval.Std() <= 0 {
		return fmt.Errorf("reassort.scan_interval must be positive")
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
