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
	"errors"
	"testing"

	"github.com/blinklabs-io/uplcdec/database/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPluginOption(t *testing.T) {
	var (
		dataDir   string
		cacheSize uint64
		gc        bool
		workers   int
	)
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               "options-" + t.Name(),
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{Name: "data-dir", Type: plugin.PluginOptionTypeString, Dest: &dataDir},
			{Name: "block-cache-size", Type: plugin.PluginOptionTypeUint, Dest: &cacheSize},
			{Name: "gc", Type: plugin.PluginOptionTypeBool, Dest: &gc},
			{Name: "workers", Type: plugin.PluginOptionTypeInt, Dest: &workers},
		},
	})
	name := "options-" + t.Name()

	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", ""))
	assert.Empty(t, dataDir)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", "/var/cache"))
	assert.Equal(t, "/var/cache", dataDir)
	// Wrong value type
	assert.Error(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "data-dir", 123))
	// Unknown options are ignored
	assert.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "does-not-exist", "x"))

	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "block-cache-size", uint64(100000000)))
	assert.Equal(t, uint64(100000000), cacheSize)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "block-cache-size", 42))
	assert.Equal(t, uint64(42), cacheSize)
	assert.Error(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "block-cache-size", -1))

	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "gc", true))
	assert.True(t, gc)
	require.NoError(t, plugin.SetPluginOption(plugin.PluginTypeBlob, name, "workers", 4))
	assert.Equal(t, 4, workers)

	assert.Error(t, plugin.SetPluginOption(plugin.PluginTypeMetadata, "nonexistent", "data-dir", t.TempDir()))
}

func TestErrorPlugin(t *testing.T) {
	startErr := errors.New("boom")
	name := "error-" + t.Name()
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               name,
		NewFromOptionsFunc: func() plugin.Plugin { return plugin.NewErrorPlugin(startErr) },
	})
	_, err := plugin.StartPlugin(plugin.PluginTypeMetadata, name)
	require.Error(t, err)
	assert.ErrorIs(t, err, startErr)
}
