package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/yildizm/runlens/internal/artifact"
	"github.com/yildizm/runlens/internal/logview"
	"github.com/yildizm/runlens/internal/search"
)

// maxStdinBytes caps logs piped on stdin
const maxStdinBytes = 64 << 20

// logSource is where a command reads its log from: a file, stdin, or an
// artifact of a test run.
type logSource struct {
	path     string
	runID    string
	artifact string
}

func newLogSource(args []string, runID, artifactPath string) (logSource, error) {
	src := logSource{runID: runID, artifact: artifactPath}
	if len(args) > 0 {
		src.path = args[0]
	}

	switch {
	case src.path != "" && (runID != "" || artifactPath != ""):
		return src, fmt.Errorf("use either a file or --run/--artifact, not both")
	case runID != "" && artifactPath == "":
		return src, fmt.Errorf("--run requires --artifact")
	case artifactPath != "" && runID == "":
		return src, fmt.Errorf("--artifact requires --run")
	case src.path != "":
		if err := validateFilePath(src.path); err != nil {
			return src, fmt.Errorf("invalid file path: %w", err)
		}
		src.path = filepath.Clean(src.path)
	}
	return src, nil
}

func (s logSource) isStdin() bool {
	return s.path == "" && s.runID == ""
}

func (s logSource) title() string {
	switch {
	case s.runID != "":
		return fmt.Sprintf("run %s: %s", s.runID, s.artifact)
	case s.path != "":
		return filepath.Base(s.path)
	default:
		return "stdin"
	}
}

// read loads the full log text
func (s logSource) read(ctx context.Context, stdin io.Reader) (string, error) {
	switch {
	case s.runID != "":
		return downloadLog(ctx, s.runID, s.artifact)
	case s.path != "":
		// #nosec G304 - path is validated in newLogSource
		data, err := os.ReadFile(s.path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", s.path, err)
		}
		return string(data), nil
	default:
		if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return "", fmt.Errorf("no input: pass a file, --run/--artifact, or pipe a log on stdin")
		}
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Reading from stdin...\n")
		}
		data, err := io.ReadAll(io.LimitReader(stdin, maxStdinBytes))
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func newArtifactClient() (*artifact.Client, error) {
	cfg := GetGlobalConfig()
	return artifact.NewClient(cfg.Server.BaseURL, cfg.Server.Timeout, newLogger("artifact"))
}

// downloadLog fetches an artifact and renders it as text; JSON artifacts are
// pretty-printed.
func downloadLog(ctx context.Context, runID, path string) (string, error) {
	client, err := newArtifactClient()
	if err != nil {
		return "", err
	}
	a, err := client.Download(ctx, runID, path)
	if err != nil {
		return "", err
	}
	return artifact.Render(a)
}

// validateFilePath checks that path names a readable regular file
func validateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

// filterFlags are the level and search flags shared by view, search and watch
type filterFlags struct {
	levels    []string
	matchCase bool
	wholeWord bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.levels, "levels", "l", nil, "levels to show (error, warn, debug, info, trace)")
	cmd.Flags().BoolVar(&f.matchCase, "match-case", false, "case-sensitive search")
	cmd.Flags().BoolVarP(&f.wholeWord, "whole-word", "w", false, "match whole words only")
}

// resolve falls back to the viewer config for flags that were not set
func (f *filterFlags) resolve(cmd *cobra.Command) (logview.LevelFilter, search.Options, error) {
	cfg := GetGlobalConfig()

	filter := cfg.LevelFilter()
	if cmd.Flags().Changed("levels") {
		var err error
		if filter, err = logview.ParseLevelFilter(f.levels); err != nil {
			return filter, search.Options{}, err
		}
	}

	opts := search.Options{MatchCase: cfg.Viewer.MatchCase, WholeWord: cfg.Viewer.WholeWord}
	if cmd.Flags().Changed("match-case") {
		opts.MatchCase = f.matchCase
	}
	if cmd.Flags().Changed("whole-word") {
		opts.WholeWord = f.wholeWord
	}
	return filter, opts, nil
}

func normalizeText(raw string) string {
	if GetGlobalConfig().Viewer.Normalize {
		return logview.Normalize(raw)
	}
	return raw
}
