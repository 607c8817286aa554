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

package plugin_test

import (
	"testing"

	"github.com/blinklabs-io/uplcdec/database/plugin"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPlugin struct{}

func (m *mockPlugin) Start() error { return nil }
func (m *mockPlugin) Stop() error  { return nil }

func TestRegister(t *testing.T) {
	pluginName := "test-plugin-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               pluginName,
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
	})
	assert.NotNil(t, plugin.GetPlugin(plugin.PluginTypeBlob, pluginName))
	found := false
	for _, pl := range plugin.GetPlugins(plugin.PluginTypeBlob) {
		if pl.Name == pluginName {
			found = true
		}
	}
	assert.True(t, found, "plugin not in GetPlugins list")
	// Registered under blob only
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeMetadata, pluginName))
}

func TestGetPluginMissing(t *testing.T) {
	assert.Nil(t, plugin.GetPlugin(plugin.PluginTypeBlob, "non-existent-"+t.Name()))
	_, err := plugin.StartPlugin(plugin.PluginTypeBlob, "non-existent-"+t.Name())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob plugin")
}

func TestPluginTypeName(t *testing.T) {
	assert.Equal(t, "blob", plugin.PluginTypeName(plugin.PluginTypeBlob))
	assert.Equal(t, "metadata", plugin.PluginTypeName(plugin.PluginTypeMetadata))
	assert.Empty(t, plugin.PluginTypeName(plugin.PluginType(99)))
}

func TestPopulateCmdlineOptions(t *testing.T) {
	var dataDir string
	var gc bool
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               "flags",
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{
				Name:         "data-dir",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: ".uplcdec",
				Dest:         &dataDir,
			},
			{
				Name:         "gc",
				Type:         plugin.PluginOptionTypeBool,
				DefaultValue: true,
				Dest:         &gc,
			},
		},
	})
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, plugin.PopulateCmdlineOptions(fs, plugin.PluginTypeMetadata))
	require.NoError(t, fs.Parse([]string{"--metadata-flags-data-dir", "/tmp/x"}))
	assert.Equal(t, "/tmp/x", dataDir)
	assert.True(t, gc)
}
