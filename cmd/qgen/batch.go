package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var batchExtensions = map[string]bool{
	".pdf": true, ".docx": true, ".pptx": true, ".xlsx": true,
	".jpg": true, ".jpeg": true, ".png": true,
}

type batchOptions struct {
	requirementFlags
	dir         string
	outDir      string
	concurrency int
}

// batchReport is printed to stdout once every file has been processed.
type batchReport struct {
	Processed int               `json:"processed"`
	Failed    int               `json:"failed"`
	Files     []batchFileResult `json:"files"`
}

type batchFileResult struct {
	File      string `json:"file"`
	SessionID string `json:"sessionId,omitempty"`
	Method    string `json:"generationMethod,omitempty"`
	Questions int    `json:"questions"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
}

func batchCmd() *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate questions for every document in a directory",
		Long: "Generate questions for every supported document in a directory. " +
			"Results are written as JSON next to each other in --out and saved to the question bank when db.enabled is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	opts.register(cmd)
	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", "", "Directory of documents")
	f.StringVar(&opts.outDir, "out", "qgen-out", "Directory for generated JSON files")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 4, "Documents processed in parallel")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func batchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !batchExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func runBatch(ctx context.Context, opts *batchOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.concurrency < 1 {
		return fmt.Errorf("--concurrency must be positive, got %d", opts.concurrency)
	}
	requirements, err := buildRequirements(&opts.requirementFlags)
	if err != nil {
		return err
	}
	files, err := batchFiles(opts.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents in %s", opts.dir)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	generations, err := a.generations(ctx, opts.useAI, true)
	if err != nil {
		return err
	}
	a.log.Info("Batch generation starting", zap.Int("files", len(files)), zap.Int("concurrency", opts.concurrency))

	report := batchReport{Files: make([]batchFileResult, len(files))}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency)
	for i, path := range files {
		g.Go(func() error {
			res := batchFileResult{File: filepath.Base(path)}
			defer func() {
				mu.Lock()
				report.Files[i] = res
				if res.Error != "" {
					report.Failed++
				} else {
					report.Processed++
				}
				mu.Unlock()
			}()

			sessionID, err := a.openSession(gctx, path)
			if err != nil {
				res.Error = err.Error()
				a.log.Warn("Skipping document", zap.String("file", res.File), zap.Error(err))
				return nil
			}
			res.SessionID = sessionID
			result, err := generations.GenerateQuestions(gctx, sessionID, requirements)
			if err != nil {
				res.Error = err.Error()
				a.log.Warn("Generation failed", zap.String("file", res.File), zap.Error(err))
				return nil
			}
			res.Method = result.GenerationMethod
			res.Questions = result.TotalQuestions

			res.Output = filepath.Join(opts.outDir, strings.TrimSuffix(res.File, filepath.Ext(res.File))+".json")
			out, err := os.Create(res.Output)
			if err != nil {
				res.Error = err.Error()
				return err
			}
			defer out.Close()
			if err := writeJSON(out, result); err != nil {
				res.Error = err.Error()
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	a.log.Info("Batch generation finished", zap.Int("processed", report.Processed), zap.Int("failed", report.Failed))
	if err := writeJSON(stdout, report); err != nil {
		return err
	}
	if report.Processed == 0 {
		return fmt.Errorf("all %d documents failed", report.Failed)
	}
	return nil
}
