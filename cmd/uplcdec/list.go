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

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/blinklabs-io/uplcdec/database"
	"github.com/blinklabs-io/uplcdec/database/models"
	"github.com/blinklabs-io/uplcdec/internal/config"
	"github.com/spf13/cobra"
)

func writeDecompilations(w io.Writer, items []models.Decompilation) error {
	if _, err := fmt.Fprintf(
		w,
		"%-20s  %-16s  %-10s  %-10s  %12s  %10s  %s\n",
		"CREATED",
		"KEY",
		"PURPOSE",
		"STATUS",
		"CPU",
		"MEMORY",
		"SCRIPT HASH",
	); err != nil {
		return err
	}
	for _, item := range items {
		scriptHash := "-"
		if len(item.ScriptHash) > 0 {
			scriptHash = hex.EncodeToString(item.ScriptHash)
		}
		if _, err := fmt.Fprintf(
			w,
			"%-20s  %-16s  %-10s  %-10s  %12d  %10d  %s\n",
			item.CreatedAt.UTC().Format(time.DateTime),
			hex.EncodeToString(item.CacheKey)[:16],
			item.Purpose,
			item.PurposeStatus,
			item.BudgetCPU,
			item.BudgetMemory,
			scriptHash,
		); err != nil {
			return err
		}
	}
	return nil
}

func listCommand() *cobra.Command {
	var (
		purpose string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached decompilations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errNoConfig
			}
			logger := commonRun()
			db, err := database.New(&database.Config{
				DataDir:        cfg.DatabasePath,
				Logger:         logger,
				BlobPlugin:     cfg.BlobPlugin,
				MetadataPlugin: cfg.MetadataPlugin,
			})
			if err != nil {
				if db != nil {
					db.Close()
				}
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()
			items, err := db.ListDecompilations(purpose, limit)
			if err != nil {
				return err
			}
			return writeDecompilations(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().
		StringVar(&purpose, "purpose", "", "only list entries with this purpose")
	cmd.Flags().
		IntVarP(&limit, "limit", "n", 20, "maximum number of entries, 0 for all")
	return cmd
}
