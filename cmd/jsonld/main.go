// Command jsonld transforms JSON-LD documents between their compact,
// expanded, and flattened forms.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/jsonld-go/jsonld"
)

var (
	flagBase        string
	flagContext     string
	flagMode        string
	flagOrdered     bool
	flagStrict      bool
	flagOptionsFile string
	flagOutput      string
	flagVerbose     bool

	logger *zap.Logger
)

// optionsFile mirrors the processing options configurable from YAML.
type optionsFile struct {
	Base              string `yaml:"base"`
	ProcessingMode    string `yaml:"processingMode"`
	CompactArrays     *bool  `yaml:"compactArrays"`
	CompactToRelative *bool  `yaml:"compactToRelative"`
	Ordered           bool   `yaml:"ordered"`
	Strict            bool   `yaml:"strict"`
	MaxRemoteContexts int    `yaml:"maxRemoteContexts"`
}

var rootCmd = &cobra.Command{
	Use:           "jsonld",
	Short:         "Transform JSON-LD documents between compact, expanded, and flattened forms",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if flagVerbose {
			cfg = zap.NewDevelopmentConfig()
		}
		var err error
		logger, err = cfg.Build()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand [files...]",
	Short: "Expand documents to the context-independent form",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform(cmd.Context(), args, func(ctx context.Context, doc interface{}, opts jsonld.Options) (interface{}, error) {
			return jsonld.Expand(ctx, doc, opts)
		})
	},
}

var compactCmd = &cobra.Command{
	Use:   "compact [files...]",
	Short: "Compact documents using the context given with --context",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contextDoc, err := loadContextFlag()
		if err != nil {
			return err
		}
		return runTransform(cmd.Context(), args, func(ctx context.Context, doc interface{}, opts jsonld.Options) (interface{}, error) {
			return jsonld.Compact(ctx, doc, contextDoc, opts)
		})
	},
}

var flattenCmd = &cobra.Command{
	Use:   "flatten [files...]",
	Short: "Flatten documents into a deduplicated node graph",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contextDoc, err := loadContextFlag()
		if err != nil {
			return err
		}
		return runTransform(cmd.Context(), args, func(ctx context.Context, doc interface{}, opts jsonld.Options) (interface{}, error) {
			return jsonld.Flatten(ctx, doc, contextDoc, opts)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBase, "base", "", "document base IRI")
	rootCmd.PersistentFlags().StringVar(&flagContext, "context", "", "context document file (compact/flatten)")
	rootCmd.PersistentFlags().StringVar(&flagMode, "mode", "", "processing mode: json-ld-1.0 or json-ld-1.1")
	rootCmd.PersistentFlags().BoolVar(&flagOrdered, "ordered", false, "sort object keys for deterministic output")
	rootCmd.PersistentFlags().BoolVar(&flagStrict, "strict", false, "treat warnings as errors")
	rootCmd.PersistentFlags().StringVar(&flagOptionsFile, "options", "", "YAML file with processing options")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "write output to file instead of stdout")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
	rootCmd.AddCommand(expandCmd, compactCmd, flattenCmd)
}

func buildOptions() (jsonld.Options, error) {
	opts := jsonld.NewOptions(flagBase)
	opts.DocumentLoader = jsonld.NewHTTPDocumentLoader(nil)

	if flagOptionsFile != "" {
		raw, err := os.ReadFile(flagOptionsFile)
		if err != nil {
			return opts, fmt.Errorf("reading options file: %w", err)
		}
		var file optionsFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return opts, fmt.Errorf("parsing options file: %w", err)
		}
		if file.Base != "" {
			opts.Base = file.Base
		}
		if file.ProcessingMode != "" {
			opts.ProcessingMode = file.ProcessingMode
		}
		if file.CompactArrays != nil {
			opts.CompactArrays = *file.CompactArrays
		}
		if file.CompactToRelative != nil {
			opts.CompactToRelative = *file.CompactToRelative
		}
		opts.Ordered = opts.Ordered || file.Ordered
		opts.Strict = opts.Strict || file.Strict
		if file.MaxRemoteContexts != 0 {
			opts.MaxRemoteContexts = file.MaxRemoteContexts
		}
	}

	if flagBase != "" {
		opts.Base = flagBase
	}
	if flagMode != "" {
		opts.ProcessingMode = flagMode
	}
	opts.Ordered = opts.Ordered || flagOrdered
	opts.Strict = opts.Strict || flagStrict
	opts.WarnHandler = func(w jsonld.Warning) {
		logger.Warn("processing warning", zap.String("warning", w.String()))
	}
	return opts, nil
}

func loadContextFlag() (interface{}, error) {
	if flagContext == "" {
		return nil, nil
	}
	f, err := os.Open(flagContext)
	if err != nil {
		return nil, fmt.Errorf("opening context document: %w", err)
	}
	defer f.Close()
	doc, err := jsonld.ParseJSON(f)
	if err != nil {
		return nil, fmt.Errorf("parsing context document: %w", err)
	}
	return doc, nil
}

// runTransform applies transform to every input file concurrently and
// prints results in input order.
func runTransform(ctx context.Context, files []string, transform func(context.Context, interface{}, jsonld.Options) (interface{}, error)) error {
	opts, err := buildOptions()
	if err != nil {
		return err
	}

	// The processor is purely functional, so independent documents can be
	// transformed in parallel without coordination.
	results := make([]interface{}, len(files))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("opening %s: %w", file, err)
			}
			defer f.Close()
			doc, err := jsonld.ParseJSON(f)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}
			out, err := transform(gctx, doc, opts)
			if err != nil {
				logger.Error("transform failed",
					zap.String("file", file),
					zap.String("code", string(jsonld.Code(err))))
				return fmt.Errorf("%s: %w", file, err)
			}
			mu.Lock()
			results[i] = out
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return writeResults(results)
}

func writeResults(results []interface{}) error {
	out := os.Stdout
	if flagOutput != "" {
		f, err := os.Create(flagOutput)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for _, result := range results {
		if err := enc.Encode(result); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "jsonld:", err)
		os.Exit(1)
	}
}
