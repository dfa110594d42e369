package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/numagg/internal/codec"
	"github.com/tjfontaine/numagg/internal/domain"
	"github.com/tjfontaine/numagg/internal/pipeline"
)

var computeCmd = &cobra.Command{
	Use:   "compute <mean|median|mode> <nums>",
	Short: "Compute a statistic of a comma separated list and print the result envelope",
	Example: `  numagg compute mean 1,-1,4,2
  numagg compute mode 1,1,1,2,2,3`,
	ValidArgs: []string{"mean", "median", "mode"},
	Args:      cobra.RangeArgs(1, 2),
	RunE:      runCompute,
}

var errFailedEnvelope = errors.New("aggregation failed")

func runCompute(cmd *cobra.Command, args []string) error {
	kind, ok := domain.ParseAggregationKind(args[0])
	if !ok {
		return fmt.Errorf("unknown operation %q", args[0])
	}

	var raw string
	if len(args) > 1 {
		raw = args[1]
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	exec := pipeline.New(pipeline.WithLogger(logger)).Run(cmd.Context(), kind, raw)

	return printEnvelope(cmd.OutOrStdout(), exec.Envelope)
}

func printEnvelope(w io.Writer, env *domain.Envelope) error {
	body, err := codec.MarshalEnvelope(env)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(body))

	if !env.OK() {
		return fmt.Errorf("%w: %s", errFailedEnvelope, env.Error.Message)
	}
	return nil
}
