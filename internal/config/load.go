package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// EnvFile is a dotenv file. A missing file is only an error when
	// RequireEnvFile is set.
	EnvFile        string
	RequireEnvFile bool

	// ConfigFile is an optional YAML file. It must exist when set.
	ConfigFile string

	// Environ is the process environment as KEY=VALUE pairs. Nil reads
	// os.Environ.
	Environ []string

	// Flags holds the bound command-line flags. Only flags the user
	// changed are applied.
	Flags *pflag.FlagSet
}

// Load layers defaults, the dotenv file, the YAML file, THUMBWEAVE_*
// environment variables and changed flags, in that order. It returns the
// validated configuration and warnings about ignored keys.
func Load(opts LoadOptions) (Config, []string, error) {
	cfg := Defaults()
	var warnings []string

	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			w, err := applyMap(&cfg, values, opts.EnvFile, false)
			if err != nil {
				return Config{}, nil, err
			}
			warnings = append(warnings, w...)
		case errors.Is(err, fs.ErrNotExist) && !opts.RequireEnvFile:
		default:
			return Config{}, nil, fmt.Errorf("failed to read env file %s: %w", opts.EnvFile, err)
		}
	}

	if opts.ConfigFile != "" {
		values, err := readYAML(opts.ConfigFile)
		if err != nil {
			return Config{}, nil, err
		}
		w, err := applyMap(&cfg, values, opts.ConfigFile, true)
		if err != nil {
			return Config{}, nil, err
		}
		warnings = append(warnings, w...)
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	w, err := applyMap(&cfg, prefixedEnv(environ), "environment", true)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, w...)

	if opts.Flags != nil {
		for _, k := range keys {
			f := opts.Flags.Lookup(flagName(k.name))
			if f == nil || !f.Changed {
				continue
			}
			if err := k.set(&cfg, f.Value.String()); err != nil {
				return Config{}, nil, &ValidationError{Problems: []string{"flag --" + f.Name + ": " + err.Error()}}
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

// applyMap sets every known key in values. Unknown keys are reported as
// warnings when strict is set; dotenv files commonly carry unrelated
// variables so they are skipped silently.
func applyMap(cfg *Config, values map[string]string, source string, strict bool) ([]string, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var warnings []string
	var problems []string
	for _, raw := range names {
		name := normaliseKey(raw)
		if msg, ok := retiredKeys[name]; ok {
			warnings = append(warnings, fmt.Sprintf("%s (from %s)", msg, source))
			continue
		}
		k, ok := lookupKey(name)
		if !ok {
			if strict {
				warnings = append(warnings, fmt.Sprintf("unknown configuration key %q in %s", raw, source))
			}
			continue
		}
		if err := k.set(cfg, values[raw]); err != nil {
			problems = append(problems, fmt.Sprintf("%s in %s", err, source))
		}
	}
	if len(problems) > 0 {
		return warnings, &ValidationError{Problems: problems}
	}
	return warnings, nil
}

// prefixedEnv returns THUMBWEAVE_* variables with the prefix kept so that
// normaliseKey strips it.
func prefixedEnv(environ []string) map[string]string {
	values := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(strings.ToUpper(name), EnvPrefix) {
			continue
		}
		values[name] = value
	}
	return values
}

func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified config file
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("%s in %s must be a scalar", k, path)}}
		case nil:
			values[k] = ""
		default:
			values[k] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// BindFlags registers one flag per configuration key on fs, using the
// built-in defaults for help text.
func BindFlags(fs *pflag.FlagSet) {
	defaults := Defaults()
	for _, k := range keys {
		name := flagName(k.name)
		switch k.kind {
		case kindInt:
			fs.Int(name, *k.get(&defaults).(*int), k.usage)
		case kindFloat:
			fs.Float64(name, *k.get(&defaults).(*float64), k.usage)
		default:
			fs.String(name, *k.get(&defaults).(*string), k.usage)
		}
	}
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}

// Get returns the string form of a configuration key.
func (c Config) Get(name string) (string, bool) {
	k, ok := lookupKey(normaliseKey(name))
	if !ok {
		return "", false
	}
	return k.format(&c), true
}
