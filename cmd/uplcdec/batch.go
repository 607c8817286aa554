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
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/blinklabs-io/uplcdec"
	"github.com/blinklabs-io/uplcdec/event"
	"github.com/blinklabs-io/uplcdec/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// batchExtensions maps input file extensions to their format
var batchExtensions = map[string]string{
	".uplc":   "text",
	".hex":    "hex",
	".plutus": "auto",
	".cbor":   "binary",
	".flat":   "binary",
}

// collectBatchInputs reads every recognized script file below dir, sorted
// by path
func collectBatchInputs(dir string) ([]uplcdec.BatchInput, error) {
	var inputs []uplcdec.BatchInput
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		format, ok := batchExtensions[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if format == "auto" {
			format = detectFormat(data)
		}
		input := uplcdec.BatchInput{Name: path}
		switch format {
		case "text":
			input.Text = string(data)
		case "hex":
			input.Script, err = decodeHexFile(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		default:
			input.Script = data
		}
		inputs = append(inputs, input)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(inputs, func(a, b uplcdec.BatchInput) int {
		return strings.Compare(a.Name, b.Name)
	})
	return inputs, nil
}

func batchCommand() *cobra.Command {
	var (
		workers  int
		outDir   string
		textfile string
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Decompile every script file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg == nil {
				return errNoConfig
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if textfile != "" {
				cfg.MetricsTextfile = textfile
			}
			logger := commonRun()
			inputs, err := collectBatchInputs(args[0])
			if err != nil {
				return fmt.Errorf("read inputs: %w", err)
			}
			promRegistry := prometheus.NewRegistry()
			bus := event.NewEventBus(promRegistry, logger)
			defer bus.Stop()
			var done atomic.Int64
			bus.SubscribeFunc(
				event.DecompileCompletedEventType,
				func(evt event.Event) {
					data, ok := evt.Data.(event.DecompileEvent)
					if !ok {
						return
					}
					logger.Debug(
						fmt.Sprintf("progress: %d/%d", done.Add(1), len(inputs)),
						"component", programName,
						"key", data.Key,
						"purpose", data.Purpose,
						"cached", data.Cached,
						"duration", data.Duration.String(),
					)
				},
			)
			bus.SubscribeFunc(
				event.DecompileFailedEventType,
				func(evt event.Event) {
					data, ok := evt.Data.(event.DecompileEvent)
					if !ok {
						return
					}
					logger.Warn(
						fmt.Sprintf("decompile failed: %s", data.Err),
						"component", programName,
						"stage", data.Stage,
					)
				},
			)
			d, err := newDecompiler(
				cfg,
				logger,
				promRegistry,
				uplcdec.WithEventBus(bus),
			)
			if err != nil {
				return err
			}
			defer d.Close()
			results, err := d.DecompileBatch(cmd.Context(), inputs, cfg.Workers)
			if err != nil {
				return err
			}
			failed := 0
			out := cmd.OutOrStdout()
			for _, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s: %s\n", res.Name, res.Err)
					continue
				}
				fmt.Fprintf(
					out,
					"ok   %s: %s %s\n",
					res.Name,
					res.Result.Structure.Purpose,
					res.Result.Budget,
				)
				if outDir != "" {
					if err := writeBatchOutput(args[0], outDir, res); err != nil {
						return err
					}
				}
			}
			if cfg.MetricsTextfile != "" {
				if err := uplcdec.WriteMetricsTextfile(cfg.MetricsTextfile, promRegistry); err != nil {
					return err
				}
			}
			logger.Info(
				fmt.Sprintf("decompiled %d of %d inputs", len(results)-failed, len(results)),
				"component", programName,
			)
			if failed > 0 {
				return fmt.Errorf("%d inputs failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().
		IntVarP(&workers, "workers", "w", 0, "number of parallel workers (default: number of CPUs)")
	cmd.Flags().
		StringVarP(&outDir, "output", "o", "", "directory to write generated source files to")
	cmd.Flags().
		StringVar(&textfile, "metrics-textfile", "", "write batch metrics to this file for the node_exporter textfile collector")
	return cmd
}

// writeBatchOutput writes the generated source next to the input's path
// relative to the batch root, with an .ak extension
func writeBatchOutput(root string, outDir string, res uplcdec.BatchResult) error {
	rel, err := filepath.Rel(root, res.Name)
	if err != nil {
		return err
	}
	target := filepath.Join(
		outDir,
		strings.TrimSuffix(rel, filepath.Ext(rel))+".ak",
	)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, []byte(res.Result.Source), 0o644)
}

func decodeHexFile(data []byte) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return raw, nil
}
