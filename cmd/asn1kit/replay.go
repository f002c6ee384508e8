package main

import (
	"fmt"
	"io"

	"github.com/davidjspooner/asn1kit/internal/dump"
	"github.com/davidjspooner/asn1kit/internal/replay"
	"github.com/davidjspooner/asn1kit/pkg/logevent"
	"github.com/davidjspooner/asn1kit/pkg/snmp"
	"github.com/spf13/cobra"
)

func newReplayCommand() *cobra.Command {
	var port uint16
	var raw bool
	cmd := &cobra.Command{
		Use:   "replay CAPTURE",
		Short: "Decode the UDP payloads of a pcap or pcapng capture",
		Long: "Decode the UDP payloads of a pcap or pcapng capture. Payloads are\n" +
			"decoded as SNMP messages unless --raw is given, in which case their\n" +
			"elements are listed without a schema.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logevent.LoggerFromContext(cmd.Context())
			protocol, err := snmp.NewProtocol(snmp.WithV2("public"))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			handler := replay.IPFrameHandleFunc(func(frame *replay.IPFrame) error {
				if frame.IsFragment {
					return replay.ErrReassemblyNeeded
				}
				fmt.Fprintf(w, "%s\n", frame)
				if raw {
					if err := dump.Render(w, frame.Data); err != nil {
						logger.Warn("could not list frame", logevent.EventAttrKey, "replay.failed", "frame", frame.FrameNumber, "error", err)
					}
					return nil
				}
				if err := printMessage(w, protocol, frame.Data); err != nil {
					logger.Warn("could not decode frame", logevent.EventAttrKey, "replay.failed", "frame", frame.FrameNumber, "error", err)
					fmt.Fprintf(w, "      %v\n", err)
				}
				return nil
			})
			var next replay.IPFrameHandler = handler
			if port != 0 {
				next = replay.PortFilter(port, handler)
			}
			stats, err := replay.PlaybackFile(args[0], next)
			if err != nil {
				return err
			}
			logger.Info("replay finished", logevent.EventAttrKey, "replay.done",
				"packets", stats.Packets, "frames", stats.Frames, "skipped", stats.Skipped)
			return nil
		},
	}
	cmd.Flags().Uint16Var(&port, "port", 161, "only frames to or from this UDP port, 0 for all")
	cmd.Flags().BoolVar(&raw, "raw", false, "list elements instead of decoding SNMP")
	return cmd
}

func printMessage(w io.Writer, protocol snmp.Protocol, data []byte) error {
	message, err := protocol.DecodeFrame(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "      Method: %s\n", message.PDU.Type)
	fmt.Fprintf(w, "      Community: %s\n", message.Community)
	fmt.Fprintf(w, "      Version: %d\n", message.Version)
	fmt.Fprintf(w, "      RequestID: %d\n", message.PDU.RequestID)
	if message.PDU.ErrorStatus > 0 {
		fmt.Fprintf(w, "      Error: %d\n", message.PDU.ErrorStatus)
	}
	if message.PDU.ErrorIndex > 0 {
		fmt.Fprintf(w, "      ErrorIndex: %d\n", message.PDU.ErrorIndex)
	}
	return snmp.Walk(&message.PDU, snmp.NewVarBindPrinter(w, "             "))
}
