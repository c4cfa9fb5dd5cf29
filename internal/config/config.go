// Package config loads oscpack settings using viper.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. OSCPACK_STRICT
// or OSCPACK_LOG_LEVEL.
const EnvPrefix = "OSCPACK"

// Config is the top-level configuration.
type Config struct {
	Strict bool      `mapstructure:"strict"`
	Log    LogConfig `mapstructure:"log"`

	// Keypad maps key names to the message sent when the key is pressed.
	// Decoded separately, see decodeKeypad.
	Keypad map[string]Binding `mapstructure:"-"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"` // text | json
	File   FileConfig `mapstructure:"file"`
}

// FileConfig enables a rotated log file next to stderr output.
type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Binding is one keypad entry. In the config file it is either a bare
// address or a map with address and args.
type Binding struct {
	Address string        `mapstructure:"address"`
	Args    []interface{} `mapstructure:"args"`
}

// flagKeys binds command line flags to config keys.
var flagKeys = map[string]string{
	"strict":    "strict",
	"log-level": "log.level",
	"log-file":  "log.file.path",
}

// Load reads the config file at path (optional), environment overrides and
// any of the known flags present in flags.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	keypad, err := decodeKeypad(v.GetStringMap("keypad"))
	if err != nil {
		return nil, err
	}
	cfg.Keypad = keypad

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("strict", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 10)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 7)
	v.SetDefault("log.file.compress", false)
}

var bindingType = reflect.TypeOf(Binding{})

// addressToBinding lets a keypad entry be written as just an address.
func addressToBinding(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() == reflect.String && to == bindingType {
		return Binding{Address: data.(string)}, nil
	}
	return data, nil
}

func decodeKeypad(raw map[string]interface{}) (map[string]Binding, error) {
	keypad := make(map[string]Binding, len(raw))
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       addressToBinding,
		WeaklyTypedInput: true,
		Result:           &keypad,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid keypad bindings: %w", err)
	}

	for key, b := range keypad {
		if b.Address == "" {
			return nil, fmt.Errorf("keypad binding %q has no address", key)
		}
	}
	return keypad, nil
}
