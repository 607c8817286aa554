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

package sqlite

import (
	"errors"

	"github.com/blinklabs-io/uplcdec/database/models"
	"github.com/blinklabs-io/uplcdec/database/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetDecompilation returns the summary stored under key
func (d *MetadataStoreSqlite) GetDecompilation(
	key []byte,
	txn types.Txn,
) (*models.Decompilation, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Decompilation{}
	result := db.Where("cache_key = ?", key).First(ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, types.ErrDecompilationNotFound
		}
		return nil, result.Error
	}
	return ret, nil
}

// SetDecompilation inserts a summary, replacing any previous summary for
// the same key
func (d *MetadataStoreSqlite) SetDecompilation(
	rec *models.Decompilation,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"script_hash",
			"purpose",
			"purpose_status",
			"validator",
			"budget_cpu",
			"budget_memory",
			"source_size",
			"params",
			"variants",
			"checks",
			"unrecognized",
			"unbound",
			"language",
		}),
	}).Create(rec).Error
}

// DeleteDecompilation removes the summary stored under key
func (d *MetadataStoreSqlite) DeleteDecompilation(
	key []byte,
	txn types.Txn,
) error {
	db, err := d.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Where("cache_key = ?", key).Delete(&models.Decompilation{}).Error
}

// ListDecompilations returns summaries newest first, optionally filtered by
// purpose
func (d *MetadataStoreSqlite) ListDecompilations(
	purpose string,
	limit int,
	txn types.Txn,
) ([]models.Decompilation, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Order("created_at DESC").Order("id DESC")
	if purpose != "" {
		query = query.Where("purpose = ?", purpose)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var ret []models.Decompilation
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// CountDecompilations returns the number of stored summaries
func (d *MetadataStoreSqlite) CountDecompilations(txn types.Txn) (int64, error) {
	db, err := d.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	result := db.Model(&models.Decompilation{}).Count(&count)
	return count, result.Error
}
