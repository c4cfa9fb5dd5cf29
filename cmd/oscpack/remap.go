package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/showcontroller/oscpack/osc"
)

func (a *app) newRemapCmd() *cobra.Command {
	var (
		in       framing
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "remap --from PREFIX --to PREFIX [file|-]",
		Short: "Replace an address prefix in every message, bundles included",
		Long: `Remap rewrites the address of every message whose address starts with
--from. Arguments are copied without being parsed, and bundle timetags are
kept byte for byte. Output uses the same framing as the input.`,
		Args: cobra.MaximumNArgs(1),
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

			transform := osc.AddressTransform(replacePrefix(from, to))
			out := make([][]byte, 0, len(packets))
			for i, data := range packets {
				b, err := osc.ApplyTransform(data, transform, nil)
				if err != nil {
					a.log.WithError(err).WithField("packet", i).Warn("packet left out")
					continue
				}
				out = append(out, b)
			}
			return in.writePackets(cmd.OutOrStdout(), out)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "address prefix to replace")
	cmd.Flags().StringVar(&to, "to", "", "replacement prefix")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func replacePrefix(from, to string) func(string) string {
	return func(addr string) string {
		if strings.HasPrefix(addr, from) {
			return to + addr[len(from):]
		}
		return addr
	}
}
