package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/showcontroller/oscpack/osc"
)

func (a *app) newDecodeCmd() *cobra.Command {
	var (
		in     framing
		asYAML bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file|-]",
		Short: "Decode packets and print them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer r.Close()

			packets, err := in.readPackets(r)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var enc *yaml.Encoder
			if asYAML {
				enc = yaml.NewEncoder(out)
				defer enc.Close()
			}

			failed := 0
			for i, data := range packets {
				pkt, err := osc.DecodePacket(data, a.cfg.Strict)
				if err != nil {
					a.log.WithError(err).WithField("packet", i).Error("decode failed")
					failed++
					continue
				}

				if enc != nil {
					if err := enc.Encode(osc.PacketToMap(pkt)); err != nil {
						return err
					}
					continue
				}
				printPacket(out, pkt, "")
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d packets failed to decode", failed, len(packets))
			}
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print packets as YAML documents accepted by encode")
	return cmd
}
