package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blobrelay/internal/bridge"
	"github.com/roach88/blobrelay/internal/record"
	"github.com/roach88/blobrelay/internal/relay"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	*RootOptions
	Raw bool // store the argument as a JSON string
}

// recordView is a record with its value decoded, so YAML output shows
// the payload rather than its bytes.
type recordView struct {
	ID    int64       `json:"id" yaml:"id"`
	Value interface{} `json:"value" yaml:"value"`
}

// putResult is the structured output of put.
type putResult struct {
	Message string     `json:"message" yaml:"message"`
	Record  recordView `json:"record" yaml:"record"`
}

func newRecordView(rec record.Record) (recordView, error) {
	var v interface{}
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		return recordView{}, fmt.Errorf("record %d: %w", rec.ID, err)
	}
	return recordView{ID: rec.ID, Value: v}, nil
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "put <json>",
		Short: "Store a value",
		Long: `Store one JSON value under the current millisecond key.

The argument must be a JSON document. With --raw the argument is stored
as a JSON string instead.

Examples:
  blobrelay put '{"ticker":"ETH-USD","price":3120}'
  blobrelay put --raw "hello world"
  blobrelay put --db ./data.db 42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "store the argument as a plain string")

	return cmd
}

func runPut(ctx context.Context, opts *PutOptions, arg string, cmd *cobra.Command) error {
	value := json.RawMessage(arg)
	if opts.Raw {
		value = record.StringValue(arg)
	}
	if err := record.ValidateValue(value); err != nil {
		return WrapExitError(ExitCommandError, "invalid value (use --raw for plain text)", err)
	}

	f := opts.formatter(cmd)
	var show bridge.Notifier = bridge.NopNotifier{}
	if !f.structured() {
		show = bridge.WriterNotifier{W: f.Writer}
	}

	var acks []bridge.Ack
	b, h := opts.openBridge(nil, bridge.WithNotifier(bridge.NotifierFunc(func(ctx context.Context, ack bridge.Ack) {
		acks = append(acks, ack)
		show.Notify(ctx, ack)
	})))
	defer h.Close()

	if err := b.Store(ctx, value); err != nil {
		return WrapExitError(ExitFailure, "failed to store record", err)
	}
	// Open failures are logged by the bridge and produce no ack
	if len(acks) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("record not stored: could not open %s", opts.Config.DBPath))
	}

	ack := acks[0]
	if f.structured() {
		view, err := newRecordView(ack.Record)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to decode stored record", err)
		}
		return f.Success(putResult{Message: ack.Message, Record: view})
	}

	f.VerboseLog("stored %d bytes in %s", len(ack.Record.Value), opts.Config.DBPath)
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every record in key order",
		Long: `Print every stored record, oldest key first.

Examples:
  blobrelay list
  blobrelay list --db ./data.db --format yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), rootOpts, cmd)
		},
	}

	return cmd
}

func runList(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	b, h := opts.openBridge(nil)
	defer h.Close()

	recs, err := b.FetchAll(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read records", err)
	}

	f := opts.formatter(cmd)
	if f.structured() {
		views := make([]recordView, 0, len(recs))
		for _, rec := range recs {
			view, err := newRecordView(rec)
			if err != nil {
				return WrapExitError(ExitFailure, "failed to decode record", err)
			}
			views = append(views, view)
		}
		return f.Success(views)
	}

	w := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(w, "No records.")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintf(w, "%d\t%s\n", rec.ID, rec.Value)
	}
	f.VerboseLog("%d records", len(recs))
	return nil
}

// NewRelayCommand creates the relay command.
func NewRelayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Emit every record as one indexeddbData event",
		Long: `Read every record and write a single indexeddbData event to stdout
as one JSON line. Nothing is written if the read fails.

Examples:
  blobrelay relay
  blobrelay relay --db ./data.db | jq '.detail | length'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelay(cmd.Context(), rootOpts, cmd)
		},
	}

	return cmd
}

func runRelay(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	var emitter relay.Emitter = relay.NewWriterEmitter(cmd.OutOrStdout())
	b, h := opts.openBridge(emitter)
	defer h.Close()

	if err := b.Relay(ctx); err != nil {
		return WrapExitError(ExitFailure, "relay failed", err)
	}
	return nil
}
