package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yildizm/runlens/internal/emoji"
	"github.com/yildizm/runlens/internal/urlstate"
)

type stateEncodeOptions struct {
	params      []string
	tab         string
	columns     []string
	columnOrder []string
	sort        string
	from        string
	to          string
	relative    string
	pageURL     string
}

func newStateCommand() *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Encode and decode dashboard URL state",
		Long: `Encode and decode the compact q parameter that carries dashboard view
state (tab, visible columns, sort order, timeframe and search criteria).

Keys and known values are shortened, the result is compressed and encoded
so that it is safe to put in a URL.`,
	}

	stateCmd.AddCommand(newStateEncodeCommand())
	stateCmd.AddCommand(newStateDecodeCommand())

	return stateCmd
}

func newStateEncodeCommand() *cobra.Command {
	opts := &stateEncodeOptions{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode view state into a q parameter value",
		Example: `  runlens state encode --tab runs --columns name,status --sort startedAt:desc
  runlens state encode --param status=passed,failed --relative 24h
  runlens state encode --tab runs --url https://dash.example.com/runs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStateEncode(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "raw parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.tab, "tab", "", "active tab")
	cmd.Flags().StringSliceVar(&opts.columns, "columns", nil, "visible columns")
	cmd.Flags().StringSliceVar(&opts.columnOrder, "column-order", nil, "column order")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort order as column:asc|desc pairs")
	cmd.Flags().StringVar(&opts.from, "from", "", "timeframe start (ISO-8601)")
	cmd.Flags().StringVar(&opts.to, "to", "", "timeframe end (ISO-8601)")
	cmd.Flags().StringVar(&opts.relative, "relative", "", "relative timeframe such as 24h")
	cmd.Flags().StringVar(&opts.pageURL, "url", "", "print this page URL with the state applied")

	return cmd
}

// stateParams merges --param values with the dedicated flags; the flags win
func (o *stateEncodeOptions) stateParams() (map[string]string, error) {
	params := make(map[string]string)
	for _, p := range o.params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", p)
		}
		params[strings.TrimSpace(key)] = value
	}

	set := func(key, value string) {
		if value != "" {
			params[key] = value
		}
	}
	set(urlstate.KeyTab, o.tab)
	set(urlstate.KeyVisibleColumns, strings.Join(o.columns, ","))
	set(urlstate.KeyColumnOrder, strings.Join(o.columnOrder, ","))
	set(urlstate.KeySortOrder, o.sort)
	set(urlstate.KeyFrom, o.from)
	set(urlstate.KeyTo, o.to)
	set(urlstate.KeyRelative, o.relative)
	return params, nil
}

func runStateEncode(cmd *cobra.Command, opts *stateEncodeOptions) error {
	params, err := opts.stateParams()
	if err != nil {
		return err
	}
	state, err := urlstate.FromParams(params)
	if err != nil {
		return fmt.Errorf("invalid state: %w", err)
	}
	encoded, err := urlstate.EncodeState(state)
	if err != nil {
		return err
	}

	link := ""
	if opts.pageURL != "" {
		if link, err = urlstate.WithState(opts.pageURL, encoded); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if getOutputFormat() == "json" {
		return writeJSON(out, struct {
			Query string              `json:"q"`
			URL   string              `json:"url,omitempty"`
			State urlstate.QueryState `json:"state"`
		}{encoded, link, state})
	}

	if link != "" {
		fmt.Fprintln(out, link)
		return nil
	}
	fmt.Fprintf(out, "%s=%s\n", urlstate.QueryParam, encoded)
	return nil
}

func newStateDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <value|url>",
		Short: "Decode a q parameter value or a URL carrying one",
		Example: `  runlens state decode 'q=q1ZKTMsr...'
  runlens state decode 'https://dash.example.com/runs?q=q1ZKTMsr...'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStateDecode(cmd, args[0])
		},
	}
}

func runStateDecode(cmd *cobra.Command, input string) error {
	codec := urlstate.NewCodec(newLogger("state"))

	var params map[string]string
	if isURL(input) {
		params = codec.FromURL(input)
	} else {
		params = codec.Decode(strings.TrimPrefix(input, urlstate.QueryParam+"="))
	}
	if params == nil {
		return fmt.Errorf("no state could be decoded from %q (use --verbose for details)", input)
	}

	out := cmd.OutOrStdout()
	if getOutputFormat() == "json" {
		result := struct {
			Params map[string]string    `json:"params"`
			State  *urlstate.QueryState `json:"state,omitempty"`
		}{Params: params}
		if state, err := urlstate.FromParams(params); err == nil {
			result.State = &state
		}
		return writeJSON(out, result)
	}

	fmt.Fprintf(out, "%s Decoded state:\n", emoji.GetEmoji("state"))
	writeParams(out, params)
	return nil
}

// writeParams prints params sorted by key
func writeParams(w io.Writer, params map[string]string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s=%s\n", k, params[k])
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
