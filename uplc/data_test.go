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

package uplc_test

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/blinklabs-io/uplcdec/uplc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDataEmptyConstr(t *testing.T) {
	// Constr 0 [] is tag 121 with an empty list
	encoded, err := uplc.EncodeData(&uplc.DataConstr{Tag: 0})
	require.NoError(t, err)
	assert.Equal(t, "d87980", hex.EncodeToString(encoded))
}

func TestDataPlutigoConversion(t *testing.T) {
	d := &uplc.DataConstr{
		Tag: 1,
		Fields: []uplc.Data{
			&uplc.DataBytes{Value: []byte{0xde, 0xad}},
			&uplc.DataInteger{Value: big.NewInt(-12)},
			&uplc.DataList{Items: []uplc.Data{&uplc.DataInteger{Value: big.NewInt(3)}}},
		},
	}
	pd, err := uplc.ToPlutusData(d)
	require.NoError(t, err)
	back, err := uplc.FromPlutusData(pd)
	require.NoError(t, err)
	assert.True(t, uplc.EqualData(d, back))
}

func TestEqualData(t *testing.T) {
	a := &uplc.DataInteger{Value: big.NewInt(1)}
	b := &uplc.DataInteger{Value: big.NewInt(2)}
	assert.False(t, uplc.EqualData(a, b))
	assert.False(t, uplc.EqualData(a, &uplc.DataBytes{Value: []byte{1}}))
	assert.True(t, uplc.EqualData(&uplc.DataList{}, &uplc.DataList{}))
}
