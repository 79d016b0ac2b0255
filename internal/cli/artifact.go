package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/runlens/internal/artifact"
	"github.com/yildizm/runlens/internal/emoji"
	"github.com/yildizm/runlens/internal/logger"
)

type artifactGetOptions struct {
	runID   string
	path    string
	dir     string
	print   bool
	timeout time.Duration
}

func newArtifactCommand() *cobra.Command {
	artifactCmd := &cobra.Command{
		Use:   "artifact",
		Short: "Download test run artifacts",
		Long: `Download artifacts of a test run from the dashboard API configured
under server.base_url.`,
	}

	artifactCmd.AddCommand(newArtifactGetCommand())

	return artifactCmd
}

func newArtifactGetCommand() *cobra.Command {
	opts := &artifactGetOptions{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Download an artifact and save it locally",
		Long: `Download an artifact and save it to the download directory.

The file keeps the base name of the artifact path. An existing file is
never overwritten: a numeric suffix is added instead. With --print the
artifact is written to stdout, JSON pretty-printed.`,
		Example: `  runlens artifact get --run 42 --artifact logs/test.log
  runlens artifact get --run 42 --artifact report.json --dir ./downloads
  runlens artifact get --run 42 --artifact report.json --print`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactGet(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.runID, "run", "", "test run id")
	cmd.Flags().StringVar(&opts.path, "artifact", "", "artifact path within the run")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "download directory (default from server.download_dir)")
	cmd.Flags().BoolVar(&opts.print, "print", false, "write the artifact to stdout instead of saving it")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "download timeout (default from server.timeout)")
	_ = cmd.MarkFlagRequired("run")
	_ = cmd.MarkFlagRequired("artifact")

	return cmd
}

func runArtifactGet(cmd *cobra.Command, opts *artifactGetOptions) error {
	client, err := newArtifactClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	a, err := client.Download(ctx, opts.runID, opts.path)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			return fmt.Errorf("run %s has no artifact %q", opts.runID, opts.path)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if opts.print {
		text, err := artifact.Render(a)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, text)
		return err
	}

	content, err := a.Bytes()
	if err != nil {
		return err
	}
	dir := opts.dir
	if dir == "" {
		dir = GetGlobalConfig().Server.DownloadDir
	}
	path, err := artifact.Save(dir, artifact.SuggestedName(opts.runID, opts.path), content)
	if err != nil {
		return err
	}

	newLogger("artifact").InfoWithFields("artifact saved", []logger.Field{
		logger.Path(path),
		logger.F("bytes", len(content)),
	})
	fmt.Fprintf(out, "%s Saved %s\n", emoji.GetEmoji("save"), path)
	return nil
}
