// Package config loads and saves the YAML session file of the ear trainer.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSession is returned for session values that cannot be used.
var ErrInvalidSession = errors.New("invalid session")

// Session is the content of a session file.
type Session struct {
	Listener       string        `yaml:"listener"`
	MIDIPort       int           `yaml:"midi_port"`
	AudioDevice    int           `yaml:"audio_device"`
	Low            string        `yaml:"low"`
	High           string        `yaml:"high"`
	PitchClasses   []string      `yaml:"pitch_classes,omitempty"`
	NotesPerPhrase int           `yaml:"notes_per_phrase"`
	MaxInterval    int           `yaml:"max_interval"`
	WaitForRelease bool          `yaml:"wait_for_release"`
	BPM            int           `yaml:"bpm"`
	ListenTimeout  time.Duration `yaml:"listen_timeout,omitempty"`
}

// Default returns the session used when no file is given: typed answers,
// three-note phrases over the default register.
func Default() Session {
	return Session{
		Listener:       string(contracts.NoListenerKind),
		AudioDevice:    -1,
		Low:            note.DefaultRange.Low.Name(),
		High:           note.DefaultRange.High.Name(),
		NotesPerPhrase: 3,
		MaxInterval:    12,
		BPM:            60,
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Session, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read session %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse session %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes s to path as YAML, creating parent directories.
func (s Session) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every field. An unknown listener kind wraps
// contracts.ErrListenerMisconfigured; anything else wraps ErrInvalidSession.
func (s Session) Validate() error {
	if _, err := contracts.ParseListenerKind(s.Listener); err != nil {
		return err
	}
	rng, err := s.Range()
	if err != nil {
		return err
	}
	if !rng.Valid() {
		return fmt.Errorf("%w: low %s is above high %s", ErrInvalidSession, s.Low, s.High)
	}
	if _, err := s.Classes(); err != nil {
		return err
	}
	switch {
	case s.NotesPerPhrase < 1:
		return fmt.Errorf("%w: notes_per_phrase must be at least 1", ErrInvalidSession)
	case s.MaxInterval < 1:
		return fmt.Errorf("%w: max_interval must be at least 1", ErrInvalidSession)
	case s.BPM < 1:
		return fmt.Errorf("%w: bpm must be positive", ErrInvalidSession)
	case s.ListenTimeout < 0:
		return fmt.Errorf("%w: listen_timeout is negative", ErrInvalidSession)
	case s.MIDIPort < 0:
		return fmt.Errorf("%w: midi_port is negative", ErrInvalidSession)
	}
	return nil
}

// Kind returns the configured listener kind.
func (s Session) Kind() (contracts.ListenerKind, error) {
	return contracts.ParseListenerKind(s.Listener)
}

// Range returns the register between Low and High.
func (s Session) Range() (note.Range, error) {
	low, err := note.Parse(s.Low)
	if err != nil {
		return note.Range{}, fmt.Errorf("%w: low: %w", ErrInvalidSession, err)
	}
	high, err := note.Parse(s.High)
	if err != nil {
		return note.Range{}, fmt.Errorf("%w: high: %w", ErrInvalidSession, err)
	}
	return note.Range{Low: low, High: high}, nil
}

// Classes returns the allowed pitch classes, or all twelve when none are set.
func (s Session) Classes() ([]int, error) {
	if len(s.PitchClasses) == 0 {
		all := make([]int, 12)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}
	notes, err := note.ParseAll(s.PitchClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: pitch_classes: %w", ErrInvalidSession, err)
	}
	seen := make(map[int]bool, len(notes))
	var out []int
	for _, n := range notes {
		if pc := n.PitchClass(); !seen[pc] {
			seen[pc] = true
			out = append(out, pc)
		}
	}
	return out, nil
}

// Beat is the duration of one beat at the session tempo.
func (s Session) Beat() time.Duration {
	if s.BPM <= 0 {
		return time.Second
	}
	return time.Minute / time.Duration(s.BPM)
}

// Options converts the session into listener options.
func (s Session) Options() ([]contracts.Option, error) {
	rng, err := s.Range()
	if err != nil {
		return nil, err
	}
	return []contracts.Option{
		contracts.WithMIDIPort(s.MIDIPort),
		contracts.WithAudioDevice(s.AudioDevice),
		contracts.WithWaitForRelease(s.WaitForRelease),
		contracts.WithRange(rng),
	}, nil
}
