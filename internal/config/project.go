package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultConfigFile is the chain configuration file name
const DefaultConfigFile = "catapult.toml"

// LoadProjectFile loads .env files next to path and decodes the chain
// configuration. String values are expanded against the environment.
func LoadProjectFile(path string, log *slog.Logger) (*ProjectFile, error) {
	dir := filepath.Dir(path)
	for _, envFile := range []string{filepath.Join(dir, ".env"), filepath.Join(dir, ".env.local")} {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				log.Warn("Failed to load env file", "path", envFile, "error", err)
			}
		}
	}

	var file ProjectFile
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in %s: %v", filepath.Base(path), undecoded)
	}

	file.expand()
	return &file, nil
}

func (f *ProjectFile) expand() {
	f.Common.Salt = os.ExpandEnv(f.Common.Salt)
	f.Common.Admin = os.ExpandEnv(f.Common.Admin)
	f.Common.DeployerKey = os.ExpandEnv(f.Common.DeployerKey)
	f.Common.Values = expandValues(f.Common.Values)

	for name, p := range f.Profiles {
		p.Admin = os.ExpandEnv(p.Admin)
		p.ExplorerURL = os.ExpandEnv(p.ExplorerURL)
		p.VerifierURL = os.ExpandEnv(p.VerifierURL)
		p.APIKey = os.ExpandEnv(p.APIKey)
		f.Profiles[name] = p
	}

	for name, c := range f.Chains {
		c.RPCURL = os.ExpandEnv(c.RPCURL)
		c.Salt = os.ExpandEnv(c.Salt)
		c.DeployerKey = os.ExpandEnv(c.DeployerKey)
		c.Values = expandValues(c.Values)
		f.Chains[name] = c
	}
}

func expandValues(values map[string]any) map[string]any {
	for k, v := range values {
		values[k] = expandValue(v)
	}
	return values
}

func expandValue(v any) any {
	switch val := v.(type) {
	case string:
		return os.ExpandEnv(val)
	case []any:
		for i := range val {
			val[i] = expandValue(val[i])
		}
		return val
	case map[string]any:
		return expandValues(val)
	default:
		return v
	}
}
