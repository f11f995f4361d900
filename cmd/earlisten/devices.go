package main

import (
	"fmt"
	"io"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/input"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List MIDI and audio inputs",
	Args:  cobra.NoArgs,
	RunE:  runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

func runDevices(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	midiDevices, err := input.MIDIDevices(baseOptions()...)
	fmt.Fprintln(out, "MIDI inputs:")
	if err != nil {
		fmt.Fprintf(out, "  unavailable: %v\n", err)
	} else {
		printDevices(out, midiDevices)
	}

	audioDevices, err := input.AudioDevices()
	fmt.Fprintln(out, "Audio inputs:")
	if err != nil {
		fmt.Fprintf(out, "  unavailable: %v\n", err)
	} else {
		printDevices(out, audioDevices)
	}
	return nil
}

func printDevices(out io.Writer, devices []contracts.DeviceInfo) {
	if len(devices) == 0 {
		fmt.Fprintln(out, "  none")
		return
	}
	for _, d := range devices {
		mark := " "
		if d.IsDefault {
			mark = "*"
		}
		fmt.Fprintf(out, " %s[%d] %s", mark, d.Index, d.Name)
		if d.Manufacturer != "" {
			fmt.Fprintf(out, " (%s)", d.Manufacturer)
		}
		if d.SampleRate > 0 {
			fmt.Fprintf(out, " %d ch @ %.0f Hz", d.Channels, d.SampleRate)
		}
		fmt.Fprintln(out)
	}
}
