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

package plugin

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func pluginTypeByName(name string) (PluginType, bool) {
	switch name {
	case "blob":
		return PluginTypeBlob, true
	case "metadata":
		return PluginTypeMetadata, true
	}
	return 0, false
}

// ProcessConfig applies plugin options from a config file. The map is keyed
// by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		pluginType, ok := pluginTypeByName(typeName)
		if !ok {
			return fmt.Errorf("unknown plugin type: %s", typeName)
		}
		for pluginName, options := range plugins {
			for optionName, value := range options {
				if err := SetPluginOption(pluginType, pluginName, optionName, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// EnvVarName returns the environment variable consulted for a plugin
// option, e.g. UPLCDEC_BLOB_BADGER_DATA_DIR for prefix "uplcdec"
func EnvVarName(prefix string, pluginType PluginType, pluginName string, optionName string) string {
	name := strings.Join(
		[]string{prefix, PluginTypeName(pluginType), pluginName, optionName},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// ProcessEnvVars applies plugin options from environment variables
func ProcessEnvVars(prefix string) error {
	for _, pluginType := range []PluginType{PluginTypeBlob, PluginTypeMetadata} {
		for _, p := range GetPlugins(pluginType) {
			for _, opt := range p.Options {
				envName := EnvVarName(prefix, pluginType, p.Name, opt.Name)
				envVal, ok := os.LookupEnv(envName)
				if !ok {
					continue
				}
				value, err := parseOptionValue(opt.Type, envVal)
				if err != nil {
					return fmt.Errorf("%s: %w", envName, err)
				}
				if err := SetPluginOption(pluginType, p.Name, opt.Name, value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func parseOptionValue(optType PluginOptionType, text string) (any, error) {
	switch optType {
	case PluginOptionTypeString:
		return text, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(text)
	case PluginOptionTypeInt:
		return strconv.Atoi(text)
	case PluginOptionTypeUint:
		return strconv.ParseUint(text, 10, 64)
	}
	return nil, fmt.Errorf("unknown plugin option type %d", optType)
}
