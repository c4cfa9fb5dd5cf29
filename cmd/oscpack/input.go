package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/showcontroller/oscpack/osc"
)

// framing selects how packets are laid out in a file or stream.
type framing struct {
	hex  bool
	slip bool
}

func (f *framing) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.hex, "hex", false, "one hex encoded packet per line")
	cmd.Flags().BoolVar(&f.slip, "slip", false, "SLIP framed packet stream (OSC 1.1)")
	cmd.MarkFlagsMutuallyExclusive("hex", "slip")
}

// openInput returns stdin for "-" or no argument, the named file otherwise.
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	return f, nil
}

func (f framing) readPackets(r io.Reader) ([][]byte, error) {
	switch {
	case f.slip:
		var packets [][]byte
		sr := osc.NewStreamReader(r)
		for {
			p, err := sr.ReadRaw()
			if err == io.EOF {
				return packets, nil
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read SLIP frame %d: %w", len(packets), err)
			}
			packets = append(packets, p)
		}

	case f.hex:
		var packets [][]byte
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for line := 1; sc.Scan(); line++ {
			text := strings.Join(strings.Fields(sc.Text()), "")
			if text == "" || strings.HasPrefix(text, "#") {
				continue
			}
			p, err := hex.DecodeString(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			packets = append(packets, p)
		}
		return packets, sc.Err()
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return [][]byte{data}, nil
}

func (f framing) writePackets(w io.Writer, packets [][]byte) error {
	sw := osc.NewStreamWriter(w)
	for _, p := range packets {
		var err error
		switch {
		case f.slip:
			err = sw.WriteRaw(p)
		case f.hex:
			_, err = fmt.Fprintln(w, hex.EncodeToString(p))
		default:
			_, err = w.Write(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// printPacket writes a readable, indented rendering of pkt.
func printPacket(w io.Writer, pkt osc.Packet, indent string) {
	switch p := pkt.(type) {
	case *osc.Message:
		fmt.Fprintf(w, "%s%s\n", indent, p.String())
	case *osc.Bundle:
		fmt.Fprintf(w, "%s#bundle %s\n", indent, formatTimetag(p.Timetag))
		for _, e := range p.Elements {
			printPacket(w, e, indent+"  ")
		}
	}
}

func formatTimetag(tt osc.Timetag) string {
	if tt == osc.ImmediateTimetag {
		return "immediately"
	}
	return tt.Time().UTC().Format(time.RFC3339Nano)
}
