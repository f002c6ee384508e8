package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davidjspooner/asn1kit/internal/dump"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1codec"
	"github.com/davidjspooner/asn1kit/pkg/logevent"
	"github.com/spf13/cobra"
)

func decodeHex(data []byte) ([]byte, error) {
	return hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
}

func newDecodeCommand(opts *rootOptions) *cobra.Command {
	var hexInput bool
	cmd := &cobra.Command{
		Use:   "decode TYPE [FILE]",
		Short: "Decode BER data as TYPE and print it as JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.lookup(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}
			if hexInput {
				if data, err = decodeHex(data); err != nil {
					return err
				}
			}
			v, err := asn1codec.DecodeValue(data, t)
			if err != nil {
				return err
			}
			j, err := asn1codec.ToJSON(t, v)
			if err != nil {
				return err
			}
			logevent.LoggerFromContext(cmd.Context()).Debug("decoded value", logevent.EventAttrKey, "decode.ok", "bytes", len(data))
			e := json.NewEncoder(cmd.OutOrStdout())
			e.SetEscapeHTML(false)
			e.SetIndent("", "  ")
			return e.Encode(j)
		},
	}
	cmd.Flags().BoolVar(&hexInput, "hex", false, "input is hex text")
	return cmd
}

func newEncodeCommand(opts *rootOptions) *cobra.Command {
	var hexOutput bool
	cmd := &cobra.Command{
		Use:   "encode TYPE [FILE]",
		Short: "Encode a JSON value as TYPE",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.lookup(args[0])
			if err != nil {
				return err
			}
			input, err := readInput(cmd, args[1:])
			if err != nil {
				return err
			}
			var j any
			d := json.NewDecoder(bytes.NewReader(input))
			d.UseNumber()
			if err := d.Decode(&j); err != nil {
				return fmt.Errorf("reading JSON: %w", err)
			}
			v, err := asn1codec.FromJSON(t, j)
			if err != nil {
				return err
			}
			data, err := asn1codec.EncodeValue(t, v)
			if err != nil {
				return err
			}
			if hexOutput {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&hexOutput, "hex", false, "write hex text instead of binary")
	return cmd
}

func newDumpCommand() *cobra.Command {
	var hexInput bool
	cmd := &cobra.Command{
		Use:   "dump [FILE]",
		Short: "List the elements of BER data without a schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if hexInput {
				if data, err = decodeHex(data); err != nil {
					return err
				}
			}
			return dump.Render(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().BoolVar(&hexInput, "hex", false, "input is hex text")
	return cmd
}
