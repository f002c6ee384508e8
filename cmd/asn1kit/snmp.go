package main

import (
	"context"
	"fmt"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
	"github.com/davidjspooner/asn1kit/pkg/snmp"
	"github.com/spf13/cobra"
)

type snmpOptions struct {
	community string
	v1        bool
	timeout   time.Duration
}

func (opts *snmpOptions) dial(target string) (snmp.Connection, error) {
	version := snmp.WithV2(opts.community)
	if opts.v1 {
		version = snmp.WithV1(opts.community)
	}
	protocol, err := snmp.NewProtocol(version, snmp.WithReceiveTimeout(opts.timeout))
	if err != nil {
		return nil, err
	}
	return protocol.Dial(target)
}

func newSNMPCommand() *cobra.Command {
	opts := &snmpOptions{}
	cmd := &cobra.Command{
		Use:   "snmp",
		Short: "Query an SNMP agent",
	}
	cmd.PersistentFlags().StringVar(&opts.community, "community", "public", "community string")
	cmd.PersistentFlags().BoolVar(&opts.v1, "v1", false, "use SNMPv1 instead of SNMPv2c")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Second, "time to wait for each response")

	cmd.AddCommand(
		newSNMPRequestCommand(opts, "get", "Fetch the value of each OID", snmp.Get),
		newSNMPRequestCommand(opts, "next", "Fetch the value following each OID", snmp.GetNext),
		newSNMPWalkCommand(opts),
	)
	return cmd
}

type requestFunc = func(ctx context.Context, conn snmp.Connection, oids ...asn1go.OID) (*snmp.PDU, error)

func parseOIDs(args []string) ([]asn1go.OID, error) {
	oids := make([]asn1go.OID, len(args))
	for i, arg := range args {
		oid, err := asn1go.ParseOID(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid OID %q: %w", arg, err)
		}
		oids[i] = oid
	}
	return oids, nil
}

func newSNMPRequestCommand(opts *snmpOptions, use, short string, request requestFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " TARGET OID...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oids, err := parseOIDs(args[1:])
			if err != nil {
				return err
			}
			conn, err := opts.dial(args[0])
			if err != nil {
				return err
			}
			defer conn.Close()
			pdu, err := request(cmd.Context(), conn, oids...)
			if err != nil {
				return err
			}
			if pdu.ErrorStatus != 0 {
				return fmt.Errorf("agent returned error status %d at index %d", pdu.ErrorStatus, pdu.ErrorIndex)
			}
			return snmp.Walk(pdu, snmp.NewVarBindPrinter(cmd.OutOrStdout(), ""))
		},
	}
}

// newSNMPWalkCommand follows GET_NEXT from OID until the agent returns an
// OID outside its subtree.
func newSNMPWalkCommand(opts *snmpOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "walk TARGET OID",
		Short: "Fetch every value under OID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			oids, err := parseOIDs(args[1:])
			if err != nil {
				return err
			}
			root := oids[0]
			conn, err := opts.dial(args[0])
			if err != nil {
				return err
			}
			defer conn.Close()
			printer := snmp.NewVarBindPrinter(cmd.OutOrStdout(), "")
			next := root
			for i := 0; limit <= 0 || i < limit; i++ {
				pdu, err := snmp.GetNext(cmd.Context(), conn, next)
				if err != nil {
					return err
				}
				if pdu.ErrorStatus != 0 || len(pdu.VarBinds) == 0 {
					break
				}
				vb := &pdu.VarBinds[0]
				if vb.Value.Identifier == "endOfMibView" || !hasPrefix(vb.OID, root) {
					break
				}
				if err := printer.Handle(vb); err != nil {
					return err
				}
				next = vb.OID
			}
			return printer.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many values, 0 for no limit")
	return cmd
}

func hasPrefix(oid, prefix asn1go.OID) bool {
	if len(oid) <= len(prefix) {
		return false
	}
	for i := range prefix {
		if oid[i] != prefix[i] {
			return false
		}
	}
	return true
}
