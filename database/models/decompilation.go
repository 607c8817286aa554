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

package models

import (
	"time"

	"github.com/blinklabs-io/uplcdec/database/types"
)

// Decompilation is the summary of one cached decompilation. The generated
// source itself lives in the blob store under the same key.
type Decompilation struct {
	CreatedAt time.Time
	// CacheKey is the blake2b-256 digest of the decompiler input
	CacheKey []byte `gorm:"uniqueIndex;size:32"`
	// ScriptHash is set for binary scripts only
	ScriptHash    []byte `gorm:"index;size:28"`
	Purpose       string `gorm:"index"`
	PurposeStatus string
	Validator     string
	ID            uint `gorm:"primaryKey"`
	BudgetCPU     int64
	BudgetMemory  int64
	SourceSize    types.Uint64
	Params        int
	Variants      int
	Checks        int
	Unrecognized  int
	Unbound       int
	Language      uint8
}

func (Decompilation) TableName() string {
	return "decompilation"
}
