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
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blinklabs-io/uplcdec"
	"github.com/blinklabs-io/uplcdec/cost"
	"github.com/blinklabs-io/uplcdec/internal/config"
	"github.com/blinklabs-io/uplcdec/script"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errNoConfig = errors.New("no config found in context")

// inputFlags are shared by the commands that decompile a single input
type inputFlags struct {
	format    string
	language  string
	validator string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().
		StringVar(&f.format, "format", "auto", "input format: auto, text, hex or binary")
	cmd.Flags().
		StringVar(&f.language, "language", "", "Plutus language version of binary scripts (v1, v2, v3)")
	cmd.Flags().
		StringVar(&f.validator, "validator", "", "name of the generated validator")
}

// apply copies explicitly set flags over the loaded config
func (f *inputFlags) apply(cfg *config.Config) {
	if f.language != "" {
		cfg.Language = f.language
	}
	if f.validator != "" {
		cfg.ValidatorName = f.validator
	}
}

func loadCostSource(cfg *config.Config) (cost.ParamSource, error) {
	if len(cfg.CostModels) > 0 {
		src := cost.NewEpochSource()
		for epoch, path := range cfg.CostModels {
			model, err := cost.LoadModel(path)
			if err != nil {
				return nil, fmt.Errorf("epoch %d: %w", epoch, err)
			}
			src.Set(epoch, model)
		}
		return src, nil
	}
	if cfg.CostModel != "" {
		model, err := cost.LoadModel(cfg.CostModel)
		if err != nil {
			return nil, err
		}
		return cost.StaticSource{Model: model}, nil
	}
	return cost.StaticSource{}, nil
}

func newDecompiler(
	cfg *config.Config,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
	extraOpts ...uplcdec.ConfigOptionFunc,
) (*uplcdec.Decompiler, error) {
	lang, err := script.ParseLanguage(cfg.Language)
	if err != nil {
		return nil, err
	}
	costSource, err := loadCostSource(cfg)
	if err != nil {
		return nil, err
	}
	opts := []uplcdec.ConfigOptionFunc{
		uplcdec.WithLogger(logger),
		uplcdec.WithValidatorName(cfg.ValidatorName),
		uplcdec.WithLanguage(lang),
		uplcdec.WithOptimizeOptions(cfg.Optimize),
		uplcdec.WithInlineLimit(cfg.InlineLimit),
		uplcdec.WithStrictConversion(cfg.Strict),
		uplcdec.WithCostSource(costSource),
		uplcdec.WithEpoch(cfg.Epoch),
		uplcdec.WithTracing(cfg.Tracing),
		uplcdec.WithTracingStdout(cfg.TracingStdout),
	}
	if promRegistry != nil {
		opts = append(opts, uplcdec.WithPromRegistry(promRegistry))
	}
	if cfg.Cache {
		opts = append(
			opts,
			uplcdec.WithDatabasePath(cfg.DatabasePath),
			uplcdec.WithBlobPlugin(cfg.BlobPlugin),
			uplcdec.WithMetadataPlugin(cfg.MetadataPlugin),
			uplcdec.WithCacheEntries(cfg.CacheEntries),
		)
	}
	opts = append(opts, extraOpts...)
	return uplcdec.New(uplcdec.NewConfig(opts...))
}

// readInput reads the named file, or stdin when name is empty or "-"
func readInput(name string, stdin io.Reader) ([]byte, error) {
	if name == "" || name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

// detectFormat guesses the format of an input: UPLC text starts with an
// opening parenthesis, hex text decodes cleanly, anything else is binary
func detectFormat(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '(' {
		return "text"
	}
	if len(trimmed) > 0 && len(trimmed)%2 == 0 {
		if _, err := hex.DecodeString(string(trimmed)); err == nil {
			return "hex"
		}
	}
	return "binary"
}

func decompileData(
	ctx context.Context,
	d *uplcdec.Decompiler,
	data []byte,
	format string,
) (*uplcdec.Result, error) {
	if format == "" || format == "auto" {
		format = detectFormat(data)
	}
	switch format {
	case "text":
		return d.DecompileText(ctx, string(data))
	case "hex":
		return d.DecompileHex(ctx, string(data))
	case "binary":
		return d.DecompileScript(ctx, data)
	}
	return nil, fmt.Errorf("unknown input format: %s", format)
}

// runSingle loads the config, decompiles one input and hands the result to
// render
func runSingle(
	cmd *cobra.Command,
	args []string,
	flags *inputFlags,
	render func(w io.Writer, res *uplcdec.Result) error,
) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errNoConfig
	}
	flags.apply(cfg)
	logger := commonRun()
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	data, err := readInput(name, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	d, err := newDecompiler(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error(
				fmt.Sprintf("failed to close decompiler: %s", err),
				"component", programName,
			)
		}
	}()
	res, err := decompileData(cmd.Context(), d, data, flags.format)
	if err != nil {
		return err
	}
	logger.Debug(
		"decompiled",
		"component", programName,
		"key", res.Key,
		"hash", res.Hash,
		"cached", res.Cached,
	)
	return render(cmd.OutOrStdout(), res)
}

func decompileCommand() *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "decompile [file]",
		Short: "Decompile a script to validator source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, args, flags, func(w io.Writer, res *uplcdec.Result) error {
				_, err := io.WriteString(w, res.Source)
				return err
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func analyzeCommand() *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Show the recognized contract structure as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, args, flags, func(w io.Writer, res *uplcdec.Result) error {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(2)
				if err := enc.Encode(res.Structure); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func irCommand() *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "ir [file]",
		Short: "Show the optimized intermediate representation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, args, flags, func(w io.Writer, res *uplcdec.Result) error {
				_, err := io.WriteString(w, res.IR)
				return err
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func costCommand() *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "cost [file]",
		Short: "Estimate the execution budget of a script",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSingle(cmd, args, flags, func(w io.Writer, res *uplcdec.Result) error {
				fits := "yes"
				if !res.Budget.Fits(cost.MaxTxBudget) {
					fits = "no"
				}
				_, err := fmt.Fprintf(
					w,
					"cpu: %d\nmemory: %d\nfits transaction limit: %s\n",
					res.Budget.CPU,
					res.Budget.Memory,
					fits,
				)
				return err
			})
		},
	}
	flags.register(cmd)
	return cmd
}
