package main

import (
	"context"
	"fmt"
	"time"

	"github.com/leandrodaf/earlisten/internal/logger"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/input"
	"github.com/leandrodaf/earlisten/sdk/note"
)

func main() {
	log := logger.NewZapLogger()

	devices, err := input.MIDIDevices(contracts.WithLogger(log))
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	l, err := input.OpenKeyEventListener(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithMIDIPort(0),
		contracts.WithWaitForRelease(true),
	)
	if err != nil {
		log.Error("Failed to open MIDI listener", log.Field().Error("error", err))
		return
	}
	defer l.Close()

	expected := []note.Note{note.MustParse("C4"), note.MustParse("E4"), note.MustParse("G4")}
	fmt.Println("Play", note.Names(expected), "within 30 seconds...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	played, err := l.ListenNotes(ctx, expected)
	if err != nil {
		log.Warn("Listening ended early", log.Field().Error("error", err))
	}

	result := note.Match(played, expected)
	fmt.Println("You played:", note.Names(played))
	fmt.Printf("%d of %d correct (%s)\n", result.Correct(), len(expected), result.Mismatch)
}
