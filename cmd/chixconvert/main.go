/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// chixconvert is the external CLI collaborator: it reads one or more ChiX
// L3 capture files, runs each through its own Translator, and writes the
// resulting SMARTS-format lines to the matching output path. Multi-file
// runs are fanned out across a bounded worker pool, directly modeled on
// the source tool's multiprocessing.Pool batch driver; unlike that
// driver, a worker here is a goroutine, not a process, since there is no
// GIL to work around.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/cobra"

	"github.com/HannahAHarris/chix-converter/config"
	"github.com/HannahAHarris/chix-converter/store"
	"github.com/HannahAHarris/chix-converter/translator"
)

var (
	outTag     string
	maxRows    int
	processors int
	inputType  string
	noLog      bool
	layoutPath string
	auditDB    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chixconvert <input_path> <output_path>",
	Short: "Converts ChiX L3 order book captures into SMARTS-format text",
	Long: `chixconvert translates one or more fixed-width ChiX L3 capture files into
SMARTS-dialect ENTER/TRADE/AMEND/DELET/OFFTR text lines, one line per
wire event, in the order a downstream SMARTS ingest expects them.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.Flags().StringVar(&outTag, "outtag", "output_", "Tag inserted into each output filename")
	rootCmd.Flags().IntVar(&maxRows, "maxrows", 0, "Stop after this many input records (0 = no limit)")
	rootCmd.Flags().IntVar(&processors, "processors", 1, "Number of files to convert concurrently")
	rootCmd.Flags().StringVar(&inputType, "inputtype", "file", "Input mode: file, list_txt, or dir")
	rootCmd.Flags().BoolVar(&noLog, "nolog", false, "Suppress info and warning log output (errors are still logged)")
	rootCmd.Flags().StringVar(&layoutPath, "layout", "", "Optional YAML column-offset override (see package config)")
	rootCmd.Flags().StringVar(&auditDB, "audit-db", "", "Optional SQLite path to record a per-run audit trail")
}

func runConvert(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if noLog {
		logger.SetLevel(log.ErrorLevel)
	}

	switch inputType {
	case "file", "list_txt", "dir":
	default:
		return fmt.Errorf("inputtype must be one of file, list_txt, dir, got %q", inputType)
	}

	if layoutPath != "" {
		l, err := config.LoadLayout(layoutPath)
		if err != nil {
			return err
		}
		l.Apply()
	}

	var auditStore *store.Store
	if auditDB != "" {
		s, err := store.Open(auditDB)
		if err != nil {
			return fmt.Errorf("opening audit database: %w", err)
		}
		defer s.Close()
		auditStore = s
	}

	jobs, err := planJobs(inputPath, outputPath, inputType)
	if err != nil {
		return err
	}

	return runJobs(jobs, logger, auditStore)
}

// job is one input/output file pair to convert.
type job struct {
	inputPath  string
	outputPath string
}

func planJobs(inputPath, outputPath, mode string) ([]job, error) {
	switch mode {
	case "file":
		if !strings.HasSuffix(inputPath, ".txt") && !strings.HasSuffix(inputPath, ".txt.gz") {
			return nil, fmt.Errorf("input file must end with .txt or .txt.gz, did you mean -inputtype list_txt/dir?")
		}
		out := singleOutputPath(inputPath, outputPath)
		return []job{{inputPath: inputPath, outputPath: out}}, nil

	case "list_txt":
		if !strings.HasSuffix(inputPath, ".txt") {
			return nil, fmt.Errorf("the list file itself must end with .txt, did you mean -inputtype dir?")
		}
		if !strings.HasSuffix(outputPath, "/") {
			return nil, fmt.Errorf("output_path must end in / when inputtype is list_txt")
		}
		f, err := os.Open(inputPath)
		if err != nil {
			return nil, fmt.Errorf("opening list file: %w", err)
		}
		defer f.Close()

		var jobs []job
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			jobs = append(jobs, job{inputPath: line, outputPath: outputPath + outTag + filepath.Base(line)})
		}
		return jobs, scanner.Err()

	case "dir":
		if !strings.HasSuffix(inputPath, "/") {
			return nil, fmt.Errorf("input_path must end in / when inputtype is dir")
		}
		if !strings.HasSuffix(outputPath, "/") {
			return nil, fmt.Errorf("output_path must end in / when inputtype is dir")
		}
		entries, err := os.ReadDir(inputPath)
		if err != nil {
			return nil, fmt.Errorf("reading input directory: %w", err)
		}
		var jobs []job
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || (!strings.HasSuffix(name, ".txt") && !strings.HasSuffix(name, ".txt.gz")) {
				continue
			}
			jobs = append(jobs, job{inputPath: inputPath + name, outputPath: outputPath + outTag + name})
		}
		return jobs, nil

	default:
		return nil, fmt.Errorf("inputtype misspecified: %q", mode)
	}
}

func singleOutputPath(inputPath, outputPath string) string {
	if strings.HasSuffix(outputPath, "/") {
		return outputPath + outTag + filepath.Base(inputPath)
	}
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + outTag + filepath.Ext(outputPath)
}

// runJobs fans jobs out across the configured number of worker goroutines
// and waits for them all to finish. One job failing is logged and does
// not stop the others, matching the source's multiprocessing.Pool
// semantics where a single file's exception doesn't cancel its siblings.
func runJobs(jobs []job, logger *log.Logger, auditStore *store.Store) error {
	sem := make(chan struct{}, max(1, processors))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, j := range jobs {
		j := j
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := convertOne(j, logger, auditStore); err != nil {
				logger.Error("conversion failed", "input", j.inputPath, "err", err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}

// convertOne runs one file through a fresh Translator session.
func convertOne(j job, logger *log.Logger, auditStore *store.Store) error {
	sessionID := uuid.NewString()
	started := time.Now()
	rlog := logger.With("session", sessionID, "input", j.inputPath)
	rlog.Info("run starting")

	if auditStore != nil {
		if err := auditStore.StartRun(sessionID, j.inputPath, j.outputPath, started.Format(time.RFC3339)); err != nil {
			rlog.Warn("audit StartRun failed", "err", err)
		}
	}

	in, err := openInput(j.inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(j.outputPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	tr := translator.New()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var recordsRead, linesWritten, decodeErrors int
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		recordsRead++

		output, err := tr.Process(line)
		if err != nil {
			decodeErrors++
			rlog.Warn("record rejected", "line_no", recordsRead, "err", err)
			continue
		}
		for _, l := range output.Lines {
			if _, err := writer.WriteString(l + "\n"); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			linesWritten++
		}

		if maxRows > 0 && recordsRead >= maxRows {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	rlog.Info("run finished",
		"records", humanize.Comma(int64(recordsRead)),
		"lines", humanize.Comma(int64(linesWritten)),
		"decode_errors", decodeErrors,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	if auditStore != nil {
		if err := auditStore.RecordFromTranslator(sessionID, tr.SeenSecurities(), tr.SeenUndisclosed()); err != nil {
			rlog.Warn("audit RecordFromTranslator failed", "err", err)
		}
		summary := store.RunSummary{RecordsRead: recordsRead, LinesWritten: linesWritten, DecodeErrors: decodeErrors, OK: true}
		if err := auditStore.FinishRun(sessionID, time.Now().Format(time.RFC3339), summary); err != nil {
			rlog.Warn("audit FinishRun failed", "err", err)
		}
	}

	return nil
}

// openInput transparently gzip-decompresses .gz inputs, a realistic
// companion to batch (-inputtype dir) processing of archived captures.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip input: %w", err)
	}
	return &gzipReadCloser{gz: gz, file: f}, nil
}

type gzipReadCloser struct {
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }
func (g *gzipReadCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
