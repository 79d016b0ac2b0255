package cli

import (
	"context"
	"fmt"
	"net/url"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yildizm/runlens/internal/permalink"
	"github.com/yildizm/runlens/internal/ui"
)

type viewOptions struct {
	filters  filterFlags
	runID    string
	artifact string
	hash     string
	page     string
	follow   bool
}

func newViewCommand() *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view [file]",
		Short: "Open a log in the interactive viewer",
		Long: `Open a log in the interactive viewer.

The log is read from a file, from stdin, or downloaded from the dashboard
as an artifact of a test run. Lines are classified by level and can be
filtered, searched and selected; y copies a permalink to the selection.

--hash restores a shared selection (#log-a-b-c-d) or jumps to a line
(#log-line-n). A full permalink URL is accepted as well.

Examples:
  runlens view build.log
  kubectl logs pod/runner | runlens view
  runlens view --run 42 --artifact logs/test.log
  runlens view build.log --hash '#log-12-0-14-8'
  runlens view --follow build.log`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args, opts)
		},
	}

	opts.filters.register(cmd)
	cmd.Flags().StringVar(&opts.runID, "run", "", "test run id to download the log from")
	cmd.Flags().StringVar(&opts.artifact, "artifact", "", "artifact path within the run")
	cmd.Flags().StringVar(&opts.hash, "hash", "", "permalink hash or URL to restore")
	cmd.Flags().StringVar(&opts.page, "page", "", "page URL permalinks point at (default from server.page_url)")
	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "reload when the file changes")

	return cmd
}

func runView(cmd *cobra.Command, args []string, opts *viewOptions) error {
	cfg := GetGlobalConfig()

	src, err := newLogSource(args, opts.runID, opts.artifact)
	if err != nil {
		return err
	}
	if opts.follow && src.path == "" {
		return fmt.Errorf("--follow needs a file")
	}
	filter, searchOpts, err := opts.filters.resolve(cmd)
	if err != nil {
		return err
	}

	page, hash := permalink.SplitURL(opts.hash)
	if hash == "" && page != "" && !isURL(page) {
		hash, page = "#"+page, ""
	}
	if opts.page != "" {
		page = opts.page
	}
	if page == "" {
		if page, err = defaultPageURL(src); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := newLogger("view")
	tabOpts := ui.LogTabOptions{
		Title:     src.title(),
		PageURL:   page,
		Hash:      hash,
		Filter:    filter,
		Search:    searchOpts,
		Debounce:  cfg.Viewer.DebounceDelay,
		Normalize: cfg.Viewer.Normalize,
		Color:     !noColor && !ui.IsColorDisabled() && cfg.Output.ColorMode != "never",
		Clipboard: permalink.SystemClipboard{},
		Log:       log,
	}

	var programOpts []tea.ProgramOption
	if src.isStdin() {
		// stdin carries the log, so keys come from the terminal
		text, err := src.read(ctx, cmd.InOrStdin())
		if err != nil {
			return err
		}
		tabOpts.Text = text
		programOpts = append(programOpts, tea.WithInputTTY())
	} else {
		tabOpts.Loader = func(ctx context.Context) (string, error) {
			return src.read(ctx, nil)
		}
	}

	var reloads <-chan string
	if opts.follow {
		if reloads, err = followFile(ctx, src.path, cfg.Watch.Debounce, log); err != nil {
			return err
		}
	}

	return ui.Run(ctx, tabOpts, reloads, programOpts...)
}

// defaultPageURL is the run page for downloaded artifacts and a file URL for
// local files.
func defaultPageURL(src logSource) (string, error) {
	switch {
	case src.runID != "":
		return GetGlobalConfig().RunPageURL(src.runID), nil
	case src.path != "":
		abs, err := filepath.Abs(src.path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", src.path, err)
		}
		return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
	default:
		return GetGlobalConfig().RunPageURL("stdin"), nil
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
