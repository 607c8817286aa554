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
	"context"
	"fmt"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// BatchInput is one item of a batch. Script bytes take precedence over text.
type BatchInput struct {
	Name   string
	Text   string
	Script []byte
}

// BatchResult pairs a batch input with its outcome. A failed input does not
// stop the rest of the batch.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// DecompileBatch decompiles independent inputs in parallel using up to
// workers goroutines. Results are returned in input order. The returned
// error is non-nil only when ctx is done before every input was handled.
func (d *Decompiler) DecompileBatch(
	ctx context.Context,
	inputs []BatchInput,
	workers int,
) ([]BatchResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]BatchResult, len(inputs))
	for i, input := range inputs {
		results[i].Name = input.Name
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if input.Script != nil {
				results[i].Result, results[i].Err = d.DecompileScript(gctx, input.Script)
			} else {
				results[i].Result, results[i].Err = d.DecompileText(gctx, input.Text)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// WriteMetricsTextfile writes the gathered metrics in the format read by the
// node_exporter textfile collector
func WriteMetricsTextfile(path string, gatherer prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
