package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/runlens/internal/formatter"
	"github.com/yildizm/runlens/internal/logger"
	"github.com/yildizm/runlens/internal/monitor"
	"github.com/yildizm/runlens/internal/search"
)

type searchOptions struct {
	filters    filterFlags
	term       string
	runID      string
	artifact   string
	outputFile string
	timeout    time.Duration
	stats      bool
}

func newSearchCommand() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [file]",
		Short: "Search a log and print the matching lines",
		Long: `Search a log without the interactive viewer.

Lines are classified by level and filtered first; the term is then matched
literally against the visible lines. Without --term every visible line is
listed. The summary is printed in the format chosen with --output.

Examples:
  runlens search --term timeout build.log
  runlens search --term Error --match-case --levels error,warn build.log
  cat build.log | runlens search --term "connection refused" -o json
  runlens search --run 42 --artifact logs/test.log --term FAIL -o markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	opts.filters.register(cmd)
	cmd.Flags().StringVarP(&opts.term, "term", "t", "", "text to search for")
	cmd.Flags().StringVar(&opts.runID, "run", "", "test run id to download the log from")
	cmd.Flags().StringVar(&opts.artifact, "artifact", "", "artifact path within the run")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "download timeout (default from server.timeout)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print timings of each stage to stderr")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string, opts *searchOptions) error {
	src, err := newLogSource(args, opts.runID, opts.artifact)
	if err != nil {
		return err
	}
	filter, searchOpts, err := opts.filters.resolve(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	tracker := monitor.NewTracker()
	readOp := monitor.OperationRead
	if src.runID != "" {
		readOp = monitor.OperationDownload
	}
	var raw string
	err = tracker.Track(readOp, func() error {
		var err error
		raw, err = src.read(ctx, cmd.InOrStdin())
		return err
	})
	if err != nil {
		return err
	}
	tracker.RecordBytes(len(raw))

	session := search.NewSession(filter, searchOpts)
	_ = tracker.Track(monitor.OperationClassify, func() error {
		session.SetText(normalizeText(raw))
		return nil
	})
	_ = tracker.Track(monitor.OperationSearch, func() error {
		session.Search(opts.term)
		return nil
	})
	tracker.RecordLines(len(session.Lines()))

	snapshot := tracker.Snapshot()
	newLogger("search").DebugWithFields("search finished", []logger.Field{
		logger.Count(len(session.Matches())),
		logger.Duration(snapshot.Elapsed),
	})
	if opts.stats {
		if err := snapshot.WriteReport(cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	summary := formatter.BuildSummary(src.title(), session.Lines(), session.Filter(), session.Term(), session.Options(), session.Matches())

	out := cmd.OutOrStdout()
	color := opts.outputFile == "" && colorEnabled(out)
	f, err := formatter.New(getOutputFormat(), color)
	if err != nil {
		return err
	}
	output, err := f.Format(summary)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if opts.outputFile != "" {
		if err := writeOutputBytesToFile(output, opts.outputFile); err != nil {
			return fmt.Errorf("failed to write output to file: %w", err)
		}
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Output saved to: %s\n", opts.outputFile)
		}
		return nil
	}

	_, err = out.Write(output)
	return err
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
