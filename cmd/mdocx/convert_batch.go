package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	mdocx "github.com/sfu-bigdata/go-mdocx"
	"github.com/sfu-bigdata/go-mdocx/internal/fileutil"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput      = errors.New("no input specified")
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteDOCX    = errors.New("failed to write DOCX file")
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Commands   int
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams, env *Environment) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire()
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params.fileTempDir(idx), params, env)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// fileTempDir returns the equation image directory for the idx-th file.
// Files converted in parallel never share a directory.
func (p *conversionParams) fileTempDir(idx int) string {
	if !p.batch {
		return p.tempDir
	}
	return filepath.Join(p.tempDir, strconv.Itoa(idx))
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, tempDir string, params *conversionParams, env *Environment) ConversionResult {
	start := env.Now()
	result := ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	done := func(err error) ConversionResult {
		result.Err = err
		result.Duration = env.Now().Sub(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return done(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}
	markdown := string(content)

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return done(fmt.Errorf("%w: creating output directory: %w", ErrWriteDOCX, err))
	}

	convResult, err := conv.Convert(ctx, mdocx.Input{
		Markdown:  markdown,
		SourceDir: filepath.Dir(f.InputPath),
		TempDir:   tempDir,
		Title:     resolveTitle(params.cfg, markdown, f.InputPath),
	})
	if err != nil {
		return done(err)
	}
	result.Commands = len(convResult.Commands)

	err = fileutil.WriteFileAtomic(f.OutputPath, filePermissions, func(w io.Writer) error {
		_, err := w.Write(convResult.DOCX)
		return err
	})
	if err != nil {
		return done(fmt.Errorf("%w: %v", ErrWriteDOCX, err))
	}

	return done(nil)
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers.
// A single failed file is left for the caller to report.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			if len(results) > 1 {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err))
			}
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d commands, %v)\n", r.InputPath, r.OutputPath, r.Commands, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
