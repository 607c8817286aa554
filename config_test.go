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

package uplcdec

import (
	"testing"
	"time"

	"github.com/blinklabs-io/uplcdec/ir"
	"github.com/blinklabs-io/uplcdec/script"
	"github.com/stretchr/testify/assert"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.NotNil(t, cfg.logger)
	assert.Equal(t, DefaultValidatorName, cfg.validatorName)
	assert.Equal(t, ir.DefaultOptions(), cfg.optimize)
	assert.Equal(t, script.LanguagePlutusV3, cfg.language)
	assert.Equal(t, DefaultShutdownTimeout, cfg.shutdownTimeout)
	assert.False(t, cfg.cache)
}

func TestDatabasePathEnablesCache(t *testing.T) {
	cfg := NewConfig(WithDatabasePath("/tmp/uplcdec"))
	assert.True(t, cfg.cache)
	assert.Equal(t, "/tmp/uplcdec", cfg.dataDir)

	// Explicitly disabling after the path wins
	cfg = NewConfig(WithDatabasePath("/tmp/uplcdec"), WithCache(false))
	assert.False(t, cfg.cache)
}

func TestConfigOptions(t *testing.T) {
	opts := ir.Options{ConstantFolding: true}
	cfg := NewConfig(
		WithValidatorName("vault"),
		WithLanguage(script.LanguagePlutusV2),
		WithOptimizeOptions(opts),
		WithInlineLimit(3),
		WithEpoch(500),
		WithStrictConversion(true),
		WithShutdownTimeout(time.Second),
	)
	assert.Equal(t, "vault", cfg.validatorName)
	assert.Equal(t, script.LanguagePlutusV2, cfg.language)
	assert.Equal(t, opts, cfg.optimize)
	assert.Equal(t, 3, cfg.inlineLimit)
	assert.Equal(t, uint64(500), cfg.epoch)
	assert.True(t, cfg.strict)
	assert.Equal(t, time.Second, cfg.shutdownTimeout)
}
