package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yildizm/runlens/internal/emoji"
	"github.com/yildizm/runlens/internal/highlight"
	"github.com/yildizm/runlens/internal/logger"
	"github.com/yildizm/runlens/internal/logview"
	"github.com/yildizm/runlens/internal/monitor"
	"github.com/yildizm/runlens/internal/search"
)

type watchOptions struct {
	filters   filterFlags
	term      string
	fromStart bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Follow a log file and print new lines",
		Long: `Follow a log file and print lines as they are appended.

New lines are classified with the same rules as the viewer: continuation
lines keep the level of the last explicit level, even across writes. Only
lines whose level passes the filter are printed, with matches of --term
highlighted. Press Ctrl+C to stop watching.

Examples:
  runlens watch build.log
  runlens watch --levels error,warn --term timeout build.log
  runlens watch --from-start build.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	opts.filters.register(cmd)
	cmd.Flags().StringVarP(&opts.term, "term", "t", "", "highlight this term in printed lines")
	cmd.Flags().BoolVar(&opts.fromStart, "from-start", false, "print the existing content before following")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *watchOptions) error {
	cfg := GetGlobalConfig()
	filename := args[0]

	if err := validateFilePath(filename); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}
	filter, searchOpts, err := opts.filters.resolve(cmd)
	if err != nil {
		return err
	}
	fromStart := cfg.Watch.FromStart
	if cmd.Flags().Changed("from-start") {
		fromStart = opts.fromStart
	}

	out := cmd.OutOrStdout()
	printer := newLinePrinter(out, filter, opts.term, searchOpts, colorEnabled(out))
	tail := newTailer(filename, cfg.Viewer.Normalize)

	// Read what is already there so numbering and inheritance line up
	existing, _, err := tail.poll()
	if err != nil {
		return err
	}
	if fromStart {
		printer.print(existing)
	}

	watcher, err := createWatcher(filename)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher)

	log := newLogger("watch")
	log.InfoWithFields("watching file", []logger.Field{logger.Path(filename), logger.Duration(cfg.Watch.Debounce)})
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracker := monitor.NewTracker()
	tracker.RecordLines(len(existing))
	err = runWatchLoop(ctx, watcher, tail, printer, search.NewDebouncer(cfg.Watch.Debounce), tracker, log)
	if isVerbose() {
		_ = tracker.Snapshot().WriteReport(os.Stderr)
	}
	return err
}

// runWatchLoop prints appended lines each time the file settles after writes
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, tail *tailer, printer *linePrinter, debouncer *search.Debouncer, tracker *monitor.Tracker, log *logger.Logger) error {
	defer debouncer.Stop()
	settled, changed := settleSignal(debouncer)

	for {
		select {
		case <-ctx.Done():
			log.Debug("stopping watch")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			changedNow, replaced := watchEvent(watcher, tail.path, event, log)
			if replaced {
				tail.reset()
				printer.notice("file was replaced, reading from the start")
			}
			if changedNow {
				changed()
			}

		case <-settled:
			var (
				lines     []logview.Line
				truncated bool
			)
			err := tracker.Track(monitor.OperationPoll, func() error {
				var err error
				lines, truncated, err = tail.poll()
				return err
			})
			if err != nil {
				log.WarnWithFields("error reading new lines", []logger.Field{logger.Error(err)})
				continue
			}
			if truncated {
				printer.notice("file was truncated, reading from the start")
			}
			tracker.RecordLines(len(lines))
			printer.print(lines)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.WarnWithFields("watcher error", []logger.Field{logger.Error(err)})
		}
	}
}

// linePrinter writes classified lines that pass the level filter
type linePrinter struct {
	out      io.Writer
	filter   logview.LevelFilter
	term     string
	opts     search.Options
	engine   *search.Engine
	renderer highlight.Renderer
}

func newLinePrinter(out io.Writer, filter logview.LevelFilter, term string, opts search.Options, color bool) *linePrinter {
	var renderer highlight.Renderer = highlight.MarkerStyles{}
	if color {
		renderer = highlight.DefaultStyles()
	}
	return &linePrinter{
		out:      out,
		filter:   filter,
		term:     term,
		opts:     opts,
		engine:   search.NewEngine(),
		renderer: renderer,
	}
}

func (p *linePrinter) print(lines []logview.Line) {
	if len(lines) == 0 {
		return
	}
	lines = logview.ApplyVisibility(lines, p.filter)
	// the cache is keyed on visibility, not content
	p.engine.Invalidate()
	byLine := search.ByLine(p.engine.Search(lines, p.term, p.opts))

	for i, line := range lines {
		if !line.Visible {
			continue
		}
		content := p.renderer.Render(highlight.RenderLine(line.Content, byLine[i], -1))
		fmt.Fprintf(p.out, "%s %6d %-5s %s\n", emoji.ForLevel(line.Level.String()), line.Number, line.Level, content)
	}
}

func (p *linePrinter) notice(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", emoji.GetEmoji("watch"), msg)
}
