package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1schema"
	"github.com/davidjspooner/asn1kit/pkg/logevent"
	"github.com/davidjspooner/asn1kit/pkg/snmp"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	schema   string
	logLevel string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "asn1kit",
		Short:         "Encode, decode and inspect ASN.1 BER data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logevent.ParseLevel(opts.logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(logevent.NewHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&opts.schema, "schema", "snmp", `YAML schema module, or "snmp" for the built in SNMPv2 module`)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	cmd.AddCommand(
		newDecodeCommand(opts),
		newEncodeCommand(opts),
		newDumpCommand(),
		newReplayCommand(),
		newSNMPCommand(),
	)
	return cmd
}

func (opts *rootOptions) lookup(name string) (asn1schema.Type, error) {
	var m *asn1schema.Module
	var err error
	if opts.schema == "snmp" {
		m, err = snmp.Schema()
	} else {
		m, err = asn1schema.LoadModuleFile(opts.schema)
	}
	if err != nil {
		return nil, err
	}
	return m.Resolve(name)
}

// readInput reads the named file, or stdin for "-" or no name.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func main() {
	err := newRootCommand().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
