package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yildizm/runlens/internal/emoji"
	"github.com/yildizm/runlens/internal/permalink"
)

type permalinkBuildOptions struct {
	page        string
	runID       string
	startLine   int
	startOffset int
	endLine     int
	endOffset   int
	copy        bool
}

func newPermalinkCommand() *cobra.Command {
	permalinkCmd := &cobra.Command{
		Use:   "permalink",
		Short: "Build and parse links to a selection in a log",
		Long: `Build and parse log permalinks.

A permalink is the page URL followed by #log-a-b-c-d, where a:b is the
start line and rune offset of the selection and c:d its end. Lines are
numbered from 1 and offsets from 0. #log-line-n links to a whole line.`,
	}

	permalinkCmd.AddCommand(newPermalinkBuildCommand())
	permalinkCmd.AddCommand(newPermalinkParseCommand())

	return permalinkCmd
}

func newPermalinkBuildCommand() *cobra.Command {
	opts := &permalinkBuildOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a permalink for a selection",
		Example: `  runlens permalink build --run 42 --start-line 12 --end-line 14 --end-offset 8
  runlens permalink build --page https://dash.example.com/runs/42 --start-line 3 --start-offset 4 --end-line 3 --end-offset 20 --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPermalinkBuild(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.page, "page", "", "page URL the link points at")
	cmd.Flags().StringVar(&opts.runID, "run", "", "test run id, used with server.page_url when --page is not set")
	cmd.Flags().IntVar(&opts.startLine, "start-line", 0, "first selected line (1-based)")
	cmd.Flags().IntVar(&opts.startOffset, "start-offset", 0, "rune offset in the first line")
	cmd.Flags().IntVar(&opts.endLine, "end-line", 0, "last selected line (1-based)")
	cmd.Flags().IntVar(&opts.endOffset, "end-offset", 0, "rune offset in the last line")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "also copy the link to the clipboard")

	return cmd
}

func (o *permalinkBuildOptions) validate() error {
	if o.startLine < 1 || o.endLine < 1 {
		return fmt.Errorf("--start-line and --end-line are required and start at 1")
	}
	if o.startOffset < 0 || o.endOffset < 0 {
		return fmt.Errorf("offsets must be non-negative")
	}
	if o.page == "" && o.runID == "" {
		return fmt.Errorf("either --page or --run is required")
	}
	return nil
}

func runPermalinkBuild(cmd *cobra.Command, opts *permalinkBuildOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	anchor := permalink.Position{Line: opts.startLine, Offset: opts.startOffset}
	focus := permalink.Position{Line: opts.endLine, Offset: opts.endOffset}
	r, ok := permalink.Capture(anchor, focus)
	if !ok {
		return fmt.Errorf("selection is empty: start and end are the same position")
	}

	page := opts.page
	if page == "" {
		page = GetGlobalConfig().RunPageURL(opts.runID)
	}
	link, err := permalink.Build(page, r)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.copy {
		if err := (permalink.SystemClipboard{}).WriteText(link); err != nil {
			return err
		}
		if isVerbose() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s Copied to clipboard\n", emoji.GetEmoji("clipboard"))
		}
	}

	if getOutputFormat() == "json" {
		return writeJSON(out, struct {
			URL   string          `json:"url"`
			Hash  string          `json:"hash"`
			Range permalink.Range `json:"range"`
		}{link, r.Hash(), r})
	}
	fmt.Fprintln(out, link)
	return nil
}

func newPermalinkParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <hash|url>",
		Short: "Show the selection a permalink points at",
		Example: `  runlens permalink parse '#log-12-0-14-8'
  runlens permalink parse 'https://dash.example.com/runs/42#log-line-30'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPermalinkParse(cmd, args[0])
		},
	}
}

func runPermalinkParse(cmd *cobra.Command, input string) error {
	page, hash := permalink.SplitURL(input)
	if hash == "" && !isURL(page) {
		hash, page = "#"+page, ""
	}

	out := cmd.OutOrStdout()
	jsonOut := getOutputFormat() == "json"

	if line, ok := permalink.ParseLine(hash); ok {
		if jsonOut {
			return writeJSON(out, struct {
				Page string `json:"page,omitempty"`
				Line int    `json:"line"`
			}{page, line})
		}
		writePage(cmd, page)
		fmt.Fprintf(out, "Line:  %d\n", line)
		return nil
	}

	r, err := permalink.Decode(hash)
	if err != nil {
		return fmt.Errorf("%w: %q", err, hash)
	}
	if jsonOut {
		return writeJSON(out, struct {
			Page  string          `json:"page,omitempty"`
			Range permalink.Range `json:"range"`
		}{page, r})
	}
	writePage(cmd, page)
	fmt.Fprintf(out, "Start: line %d, offset %d\n", r.StartLine, r.StartOffset)
	fmt.Fprintf(out, "End:   line %d, offset %d\n", r.EndLine, r.EndOffset)
	return nil
}

func writePage(cmd *cobra.Command, page string) {
	if page != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Page:  %s\n", emoji.GetEmoji("link"), page)
	}
}
