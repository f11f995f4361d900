package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/input"
	"github.com/leandrodaf/earlisten/sdk/listener"
	"github.com/leandrodaf/earlisten/sdk/note"
	"github.com/spf13/cobra"
)

var (
	listenPort        int
	listenDevice      int
	listenDuration    time.Duration
	listenNotes       int
	listenMicNotes    int
	listenWaitRelease bool
	listenLow         string
	listenHigh        string
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Capture notes once and print them",
}

var listenMIDICmd = &cobra.Command{
	Use:   "midi",
	Short: "Print key events from a MIDI input",
	Args:  cobra.NoArgs,
	RunE:  runListenMIDI,
}

var listenMicCmd = &cobra.Command{
	Use:   "mic",
	Short: "Print notes detected on an audio input",
	Args:  cobra.NoArgs,
	RunE:  runListenMic,
}

func init() {
	listenMIDICmd.Flags().IntVarP(&listenPort, "port", "p", 0, "MIDI input index (see devices)")
	listenMIDICmd.Flags().DurationVarP(&listenDuration, "duration", "d", 10*time.Second, "Stop after this long (0 for no limit)")
	listenMIDICmd.Flags().IntVarP(&listenNotes, "notes", "n", 0, "Stop after this many notes (0 for no limit)")
	listenMIDICmd.Flags().BoolVar(&listenWaitRelease, "wait-release", false, "Count a note only once its key is released")

	listenMicCmd.Flags().IntVar(&listenDevice, "device", -1, "Audio input index (-1 for the default input)")
	listenMicCmd.Flags().IntVarP(&listenMicNotes, "notes", "n", 1, "Stop after this many notes (0 until interrupted)")
	listenMicCmd.Flags().StringVar(&listenLow, "low", note.DefaultRange.Low.Name(), "Lowest note to detect")
	listenMicCmd.Flags().StringVar(&listenHigh, "high", note.DefaultRange.High.Name(), "Highest note to detect")

	listenCmd.AddCommand(listenMIDICmd, listenMicCmd)
	rootCmd.AddCommand(listenCmd)
}

func runListenMIDI(cmd *cobra.Command, args []string) error {
	opts := append(baseOptions(), contracts.WithMIDIPort(listenPort))
	l, err := input.OpenKeyEventListener(opts...)
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "Listening... press Ctrl+C to stop.")
	events, err := l.Listen(cmd.Context(), contracts.ListenOptions{
		Duration:       listenDuration,
		NumNotes:       listenNotes,
		WaitForRelease: listenWaitRelease,
	})
	for _, e := range events {
		fmt.Fprintln(cmd.OutOrStdout(), e.String())
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Pressed:", strings.Join(note.Names(listener.PressedNotes(events)), " "))
	return ignoreCancel(err)
}

func runListenMic(cmd *cobra.Command, args []string) error {
	low, err := note.Parse(listenLow)
	if err != nil {
		return err
	}
	high, err := note.Parse(listenHigh)
	if err != nil {
		return err
	}
	rng := note.Range{Low: low, High: high}
	if !rng.Valid() {
		return fmt.Errorf("low %s is above high %s", low, high)
	}

	opts := append(baseOptions(), contracts.WithAudioDevice(listenDevice), contracts.WithRange(rng))
	p, err := input.OpenPitchListener(opts...)
	if err != nil {
		return err
	}
	defer p.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "Listening... press Ctrl+C to stop.")
	notes, err := p.Listen(cmd.Context(), listenMicNotes, rng)
	fmt.Fprintln(cmd.OutOrStdout(), "Heard:", strings.Join(note.Names(notes), " "))
	return ignoreCancel(err)
}

// ignoreCancel treats an interrupt as a normal end of the command.
func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
