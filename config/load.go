package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-liveness/args"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvAssets    = "FLD_ASSETS"
	EnvTokenData = "FLD_TOKENDATA"
	EnvTokenFile = "FLD_TOKENFILE"
)

// LoadFile overlays the keys present in a YAML file onto c.
//
// Arguments:
//   - path: Path to the YAML file.
//
// Returns:
//   - error: An error if the file cannot be read or parsed.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment when they exist.
// Variables already set are never overridden.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return errors.Wrap(godotenv.Load(existing...), "failed to load .env")
}

// ApplyEnv overlays assets and license settings found in the environment.
//
// Arguments:
//   - lookup: The environment lookup function, usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAssets); ok && v != "" {
		c.AssetsFolder = v
	}
	if v, ok := lookup(EnvTokenFile); ok && v != "" {
		c.LicenseTokenFile = v
	}
	if v, ok := lookup(EnvTokenData); ok && v != "" {
		c.LicenseTokenData = v
	}
}

// ApplyArgs overlays the --assets, --tokenfile and --tokendata command-line values.
func (c *Config) ApplyArgs(a args.Args) {
	if a.Has(args.KeyAssets) {
		c.AssetsFolder = a.Path(args.KeyAssets)
	}
	if a.Has(args.KeyTokenFile) {
		c.LicenseTokenFile = a.Path(args.KeyTokenFile)
	}
	if a.Has(args.KeyTokenData) {
		c.LicenseTokenData = a.Get(args.KeyTokenData)
	}
}

// Resolve builds the configuration for a command: base, then the YAML file named by --config,
// then the environment, then the command line.
//
// Arguments:
//   - base: The defaults of the command.
//   - a: The parsed command line.
//   - lookup: The environment lookup function.
//
// Returns:
//   - Config: The resolved configuration.
//   - error: An error if the YAML file is invalid or the result does not validate.
func Resolve(base Config, a args.Args, lookup func(string) (string, bool)) (Config, error) {
	c := base
	c.DetectROI = append([]float64(nil), base.DetectROI...)

	if a.Has(args.KeyConfig) {
		if err := c.LoadFile(a.Path(args.KeyConfig)); err != nil {
			return Config{}, err
		}
	}
	if lookup != nil {
		c.ApplyEnv(lookup)
	}
	c.ApplyArgs(a)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
