package main

import (
	"fmt"
	"strings"

	"github.com/eiannone/keyboard"
	"github.com/spf13/cobra"

	"github.com/showcontroller/oscpack/internal/config"
	"github.com/showcontroller/oscpack/osc"
)

// keyNames names the special keys usable in keypad bindings.
var keyNames = map[keyboard.Key]string{
	keyboard.KeySpace:      "space",
	keyboard.KeyEnter:      "enter",
	keyboard.KeyTab:        "tab",
	keyboard.KeyBackspace:  "backspace",
	keyboard.KeyArrowUp:    "up",
	keyboard.KeyArrowDown:  "down",
	keyboard.KeyArrowLeft:  "left",
	keyboard.KeyArrowRight: "right",
	keyboard.KeyF1:         "f1",
	keyboard.KeyF2:         "f2",
	keyboard.KeyF3:         "f3",
	keyboard.KeyF4:         "f4",
}

func (a *app) newKeypadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keypad",
		Short: "Send a SLIP framed message to stdout for each bound key",
		Long: `Keypad reads single key presses and writes the message bound to the key,
SLIP framed, to stdout. Pipe the output to a serial line or TCP connection.
Bindings come from the config file:

  keypad:
    "1": /led/1/high
    "4": /led/1/low
    space:
      address: /transport/play
      args: [{type: integer, value: 1}]

Key names are case insensitive. Press ESC or Ctrl+C to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msgs, err := keypadMessages(a.cfg.Keypad)
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				return fmt.Errorf("no keypad bindings configured")
			}

			if err := keyboard.Open(); err != nil {
				return fmt.Errorf("failed to open keyboard: %w", err)
			}
			defer keyboard.Close()

			w := osc.NewStreamWriter(cmd.OutOrStdout())
			w.Strict = a.cfg.Strict
			a.log.Info("Press ESC to quit")
			return a.runKeypad(keyboard.GetKey, msgs, w)
		},
	}
}

// keypadMessages builds the message for every binding up front so that
// configuration errors show before the terminal switches to raw mode.
func keypadMessages(bindings map[string]config.Binding) (map[string]*osc.Message, error) {
	msgs := make(map[string]*osc.Message, len(bindings))
	for key, b := range bindings {
		pkt, err := osc.PacketFromMap(map[string]interface{}{
			"address": b.Address,
			"args":    b.Args,
		}, true)
		if err != nil {
			return nil, fmt.Errorf("keypad binding %q: %w", key, err)
		}
		msg := pkt.(*osc.Message)
		if _, err := osc.EncodeMessage(msg, true); err != nil {
			return nil, fmt.Errorf("keypad binding %q: %w", key, err)
		}
		msgs[strings.ToLower(key)] = msg
	}
	return msgs, nil
}

// runKeypad sends the bound message for each key from getKey until ESC or
// Ctrl+C.
func (a *app) runKeypad(getKey func() (rune, keyboard.Key, error), msgs map[string]*osc.Message, w *osc.StreamWriter) error {
	for {
		char, key, err := getKey()
		if err != nil {
			return err
		}
		if key == keyboard.KeyEsc || key == keyboard.KeyCtrlC {
			return nil
		}

		name := keyName(char, key)
		msg, ok := msgs[name]
		if !ok {
			a.log.WithField("key", name).Debug("unbound key")
			continue
		}
		if err := w.WritePacket(msg); err != nil {
			return err
		}
		a.log.WithField("key", name).WithField("address", msg.Address).Info("sent")
	}
}

func keyName(char rune, key keyboard.Key) string {
	if char == ' ' {
		return keyNames[keyboard.KeySpace]
	}
	if char != 0 {
		return strings.ToLower(string(char))
	}
	return keyNames[key]
}
