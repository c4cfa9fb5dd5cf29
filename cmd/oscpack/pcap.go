package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/showcontroller/oscpack/internal/capture"
	"github.com/showcontroller/oscpack/osc"
)

func (a *app) newPcapCmd() *cobra.Command {
	var port uint16

	cmd := &cobra.Command{
		Use:   "pcap FILE",
		Short: "Decode the OSC traffic in a pcap or pcapng file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open capture: %w", err)
			}
			defer f.Close()

			r, err := capture.NewReader(f)
			if err != nil {
				return err
			}
			r.Port = port

			n, err := a.dumpCapture(cmd.OutOrStdout(), r)
			a.log.WithField("packets", n).Info("capture done")
			return err
		},
	}

	cmd.Flags().Uint16VarP(&port, "port", "p", 0, "only datagrams from or to this UDP port")
	return cmd
}

// dumpCapture prints every datagram that decodes as OSC and returns how many
// did.
func (a *app) dumpCapture(w io.Writer, r *capture.Reader) (int, error) {
	n := 0
	for {
		d, err := r.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}

		pkt, err := osc.DecodePacket(d.Payload, a.cfg.Strict)
		if err != nil {
			a.log.WithFields(logrus.Fields{
				"src": d.Src.String(),
				"dst": d.Dst.String(),
			}).WithError(err).Warn("not an OSC packet")
			continue
		}

		n++
		fmt.Fprintf(w, "%s %s > %s\n", d.Timestamp.UTC().Format(time.RFC3339Nano), d.Src, d.Dst)
		printPacket(w, pkt, "  ")
	}
}
