package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigSet provides the runtime configuration
var ConfigSet = wire.NewSet(
	Provider,
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		root, err := FindProjectRoot()
		if err != nil {
			// Commands that never read the chain configuration still work
			// outside a project
			if root, err = os.Getwd(); err != nil {
				return nil, fmt.Errorf("failed to determine working directory: %w", err)
			}
		}
		projectRoot = root
	}

	configFile := v.GetString("config")
	if configFile == "" {
		configFile = DefaultConfigFile
	}
	if !filepath.IsAbs(configFile) {
		configFile = filepath.Join(projectRoot, configFile)
	}

	catalogFile := v.GetString("catalog")
	if catalogFile != "" && !filepath.IsAbs(catalogFile) {
		catalogFile = filepath.Join(projectRoot, catalogFile)
	}

	return &RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".catapult"),
		ConfigFile:     configFile,
		CatalogFile:    catalogFile,
		ArtifactsDir:   v.GetString("artifacts"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
	}, nil
}

// FindProjectRoot walks up from current directory to find catapult.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, DefaultConfigFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a catapult project (%s not found)", DefaultConfigFile)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("CATAPULT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", "30m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); err != nil {
			panic(err)
		}
	})

	return v
}
