// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/uplcdec/database/plugin"
	"github.com/blinklabs-io/uplcdec/ir"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "uplcdec.config"

const (
	EnvPrefix = "uplcdec"

	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
	DefaultDatabasePath   = ".uplcdec"
	DefaultValidatorName  = "decompiled"
	DefaultLanguage       = "v3"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   *Config                   `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath    string     `yaml:"databasePath"    split_words:"true"`
	BlobPlugin      string     `yaml:"blobPlugin"      envconfig:"BLOB_PLUGIN"`
	MetadataPlugin  string     `yaml:"metadataPlugin"  envconfig:"METADATA_PLUGIN"`
	ValidatorName   string     `yaml:"validatorName"   split_words:"true"`
	Language        string     `yaml:"language"`
	CostModel       string     `yaml:"costModel"       split_words:"true"`
	MetricsTextfile string     `yaml:"metricsTextfile" split_words:"true"`
	Optimize        ir.Options `yaml:"optimize"`
	Epoch           uint64     `yaml:"epoch"`
	InlineLimit     int        `yaml:"inlineLimit"     split_words:"true"`
	CacheEntries    int        `yaml:"cacheEntries"    split_words:"true"`
	Workers         int        `yaml:"workers"`
	Cache           bool       `yaml:"cache"`
	Strict          bool       `yaml:"strict"`
	Tracing         bool       `yaml:"tracing"`
	TracingStdout   bool       `yaml:"tracingStdout"   split_words:"true"`
	// CostModels maps the first epoch of a cost model to its file. It takes
	// precedence over CostModel.
	CostModels map[uint64]string `yaml:"costModels" ignored:"true"`
}

// DefaultConfig returns a config populated with default values
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:   DefaultDatabasePath,
		BlobPlugin:     DefaultBlobPlugin,
		MetadataPlugin: DefaultMetadataPlugin,
		ValidatorName:  DefaultValidatorName,
		Language:       DefaultLanguage,
		Optimize:       ir.DefaultOptions(),
		Cache:          true,
	}
}

// findConfigFile returns the first existing default config file path
func findConfigFile() string {
	// Check for config file in this path: ~/.uplcdec/uplcdec.yaml
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".uplcdec", "uplcdec.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	// Try to check for /etc/uplcdec/uplcdec.yaml if still not found
	systemPath := "/etc/uplcdec/uplcdec.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

// LoadConfig builds a config from defaults, the config file and the
// environment, in that order. With an empty configFile the default
// locations are checked.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			return nil, err
		}
	}
	// Process environment variables
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	// Process plugin environment variables
	if err := plugin.ProcessEnvVars(EnvPrefix); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	// First unmarshal into temp config to handle plugin sections
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Config != nil {
		// Overlay config values onto existing defaults
		configBytes, err := yaml.Marshal(tempCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		if err := yaml.Unmarshal(configBytes, cfg); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, cfg); err != nil {
		// Otherwise the whole file is the main config
		return fmt.Errorf("error parsing config file: %w", err)
	}

	// Process plugin configurations
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			mergePluginSection(
				pluginConfig,
				"blob",
				tempCfg.Database.Blob,
				&cfg.BlobPlugin,
			)
		}
		if tempCfg.Database.Metadata != nil {
			mergePluginSection(
				pluginConfig,
				"metadata",
				tempCfg.Database.Metadata,
				&cfg.MetadataPlugin,
			)
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// mergePluginSection handles a database.blob or database.metadata section,
// which holds an optional plugin name next to per-plugin option maps
func mergePluginSection(
	pluginConfig map[string]map[string]map[string]any,
	typeName string,
	section map[string]any,
	pluginName *string,
) {
	// Extract plugin name if specified
	if pluginVal, exists := section["plugin"]; exists {
		if name, ok := pluginVal.(string); ok {
			*pluginName = name
			delete(section, "plugin")
		}
	}
	sectionConfig := make(map[string]map[string]any)
	for k, v := range section {
		switch val := v.(type) {
		case map[string]any:
			sectionConfig[k] = val
		case map[any]any:
			// Convert map[any]any to map[string]any
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			sectionConfig[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				typeName,
				k,
				v,
			)
		}
	}
	// Merge with existing config instead of overwriting
	if pluginConfig[typeName] == nil {
		pluginConfig[typeName] = sectionConfig
	} else {
		maps.Copy(pluginConfig[typeName], sectionConfig)
	}
}
