package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/showcontroller/oscpack/osc"
)

func (a *app) newEncodeCmd() *cobra.Command {
	var out framing

	cmd := &cobra.Command{
		Use:   "encode [file|-]",
		Short: "Encode YAML or JSON packet descriptions",
		Long: `Encode reads one or more YAML documents (JSON works too). Each document is
a packet or a list of packets:

  address: /mixer/fader/1
  args:
    - {type: integer, value: 3}
    - 0.75

  timetag: [3900000000, 0]
  elements:
    - {address: /a}
    - {address: /b, args: [hello]}`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer r.Close()

			packets, err := encodeDocuments(r, a.cfg.Strict)
			if err != nil {
				return err
			}
			a.log.WithField("count", len(packets)).Debug("encoded packets")
			return out.writePackets(cmd.OutOrStdout(), packets)
		},
	}

	out.register(cmd)
	return cmd
}

// encodeDocuments encodes every packet of a YAML stream.
func encodeDocuments(r io.Reader, strict bool) ([][]byte, error) {
	var packets [][]byte
	dec := yaml.NewDecoder(r)
	for doc := 0; ; doc++ {
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return packets, nil
			}
			return nil, fmt.Errorf("document %d: %w", doc, err)
		}

		items, ok := v.([]interface{})
		if !ok {
			items = []interface{}{v}
		}
		for i, item := range items {
			data, err := osc.EncodePacket(item, strict)
			if err != nil {
				return nil, fmt.Errorf("document %d, packet %d: %w", doc, i, err)
			}
			packets = append(packets, data)
		}
	}
}
