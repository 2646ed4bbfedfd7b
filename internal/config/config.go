// ABOUTME: Player configuration loading
// ABOUTME: Merges defaults, optional YAML file, MODBRIDGE_ env vars and explicit flags with viper
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modbridge/modbridge/internal/bridge"
	"github.com/modbridge/modbridge/pkg/audio"
	"github.com/modbridge/modbridge/pkg/audio/output"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	configName = "modbridge"
	configType = "yaml"
	envPrefix  = "MODBRIDGE"

	KeyVolume  = "volume"
	KeyOnEnd   = "on_end"
	KeyBackend = "backend"
	KeyLogFile = "log_file"
	KeyDebug   = "debug"

	DefaultLogFile = "modbridge.log"
)

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"volume":   KeyVolume,
	"on-end":   KeyOnEnd,
	"backend":  KeyBackend,
	"log-file": KeyLogFile,
	"debug":    KeyDebug,
}

// Config holds resolved player settings
type Config struct {
	Volume    int
	EndPolicy bridge.EndPolicy
	Backend   string
	LogFile   string
	Debug     bool
}

// NewViper returns a viper instance with defaults and environment binding
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyVolume, audio.DefaultVolume)
	v.SetDefault(KeyOnEnd, bridge.EndSilence.String())
	v.SetDefault(KeyBackend, output.BackendMalgo)
	v.SetDefault(KeyLogFile, DefaultLogFile)
	v.SetDefault(KeyDebug, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile loads configFile, or searches the working directory and
// $HOME/.config/modbridge for modbridge.yaml when configFile is empty. A
// missing file is only an error when it was named explicitly.
func ReadFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return nil
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", configName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// ApplyFlags copies flags that were set on the command line into v, so they
// take precedence over env and file values
func ApplyFlags(v *viper.Viper, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			v.Set(key, f.Value.String())
		}
	})
}

// Resolve validates v into a Config
func Resolve(v *viper.Viper) (Config, error) {
	volume, err := cast.ToIntE(v.Get(KeyVolume))
	if err != nil {
		return Config{}, fmt.Errorf("invalid volume %v: %w", v.Get(KeyVolume), err)
	}
	if volume < 0 || volume > audio.MaxVolume {
		return Config{}, fmt.Errorf("invalid volume %d (range: 0-%d)", volume, audio.MaxVolume)
	}

	debug, err := cast.ToBoolE(v.Get(KeyDebug))
	if err != nil {
		return Config{}, fmt.Errorf("invalid debug setting %v: %w", v.Get(KeyDebug), err)
	}

	policy, err := bridge.ParseEndPolicy(v.GetString(KeyOnEnd))
	if err != nil {
		return Config{}, err
	}

	backend := strings.ToLower(v.GetString(KeyBackend))
	if !isBackend(backend) {
		return Config{}, fmt.Errorf("invalid backend %q (available: %s)", backend, strings.Join(output.Backends(), ", "))
	}

	return Config{
		Volume:    volume,
		EndPolicy: policy,
		Backend:   backend,
		LogFile:   v.GetString(KeyLogFile),
		Debug:     debug,
	}, nil
}

// Load reads the optional config file, applies set flags and resolves
func Load(configFile string, fs *flag.FlagSet) (Config, error) {
	v := NewViper()
	if err := ReadFile(v, configFile); err != nil {
		return Config{}, err
	}
	if fs != nil {
		ApplyFlags(v, fs)
	}
	return Resolve(v)
}

func isBackend(name string) bool {
	for _, b := range output.Backends() {
		if b == name {
			return true
		}
	}
	return false
}
