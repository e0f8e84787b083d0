package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	spatialcheck "github.com/wgsystem-1/SpatialCheckProMax-sub000"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/flatgeobuf"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/driver/memory"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/model"
	"github.com/wgsystem-1/SpatialCheckProMax-sub000/rules"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		rulesPath  string
		layerFlags []string
		jsonOut    bool
		verbose    bool
		noProgress bool
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate a rule catalog against FlatGeobuf layers",
		Long: `Run loads the named layers, evaluates every rule in the catalog and
prints the findings. Layers come from a YAML config file, from repeated
--layer name=path flags, or both (flags win on name collisions).

Exit status is 0 when the dataset passes, 1 when findings exist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &runConfig{}
			if configPath != "" {
				var err error
				cfg, err = loadRunConfig(configPath)
				if err != nil {
					return err
				}
			}
			if rulesPath != "" {
				cfg.Rules = rulesPath
			}
			for _, arg := range layerFlags {
				lc, err := parseLayerFlag(arg)
				if err != nil {
					return err
				}
				cfg.Layers = append(cfg.Layers, lc)
			}
			if cfg.Rules == "" {
				return fmt.Errorf("no rule catalog: pass --rules or set rules in the config")
			}
			if len(cfg.Layers) == 0 {
				return fmt.Errorf("no layers: pass --layer name=path or set layers in the config")
			}

			ruleSet, err := rules.Load(cfg.Rules)
			if err != nil {
				return err
			}

			seen := make(map[string]int)
			var layers []*memory.Layer
			for _, lc := range cfg.Layers {
				l, err := flatgeobuf.LoadLayer(lc.Path, lc.Name)
				if err != nil {
					return err
				}
				if i, dup := seen[lc.Name]; dup {
					layers[i] = l
					continue
				}
				seen[lc.Name] = len(layers)
				layers = append(layers, l)
			}
			ds := memory.Open(layers...)
			defer ds.Close()

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			opts := []spatialcheck.Option{
				spatialcheck.WithLogLevel(level),
				spatialcheck.WithConfig(cfg.checkConfig()),
			}
			if !noProgress && !jsonOut {
				opts = append(opts, spatialcheck.WithProgress(func(ev model.ProgressEvent) {
					if ev.Completed {
						fmt.Fprintf(os.Stderr, "\r%-28s %d/%d done\n", ev.CaseType, ev.Processed, ev.Total)
					} else {
						fmt.Fprintf(os.Stderr, "\r%-28s %d/%d", ev.CaseType, ev.Processed, ev.Total)
					}
				}))
			}

			engine, err := spatialcheck.New(ds, opts...)
			if err != nil {
				return err
			}
			defer engine.Close()

			if strict {
				if err := engine.ValidateRules(ruleSet); err != nil {
					return err
				}
			}

			result, err := engine.Process(cmd.Context(), ruleSet)
			if err != nil {
				return err
			}
			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printResult(cmd, result)
			}
			if !result.IsValid {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML run configuration")
	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "CSV rule catalog")
	cmd.Flags().StringArrayVarP(&layerFlags, "layer", "l", nil, "layer as name=path.fgb (repeatable)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the result as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "suppress progress output")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on rules with no registered case type instead of skipping them")
	return cmd
}

func printResult(cmd *cobra.Command, result *model.ValidationResult) {
	out := cmd.OutOrStdout()
	for _, f := range result.Errors {
		fmt.Fprintf(out, "%-8s %-24s %-16s #%-8d (%.2f, %.2f)  %s\n",
			f.Severity, f.ErrorCode, f.TableName, f.FeatureID, f.X, f.Y, f.Message)
	}
	fmt.Fprintf(out, "\nrules: %d checked, %d skipped; findings: %d errors, %d warnings\n",
		result.CheckedRules, result.SkippedRules, result.ErrorCount, result.WarningCount)
	if result.IsValid {
		fmt.Fprintln(out, "dataset PASSED")
	} else {
		fmt.Fprintln(out, "dataset FAILED")
	}
}
