// Package note models pitches as semitone indexes on the MIDI scale and
// compares them by pitch class.
package note

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidName is returned when a textual note name cannot be parsed.
var ErrInvalidName = errors.New("invalid note name")

// NoteNames lists the pitch classes in chromatic order, spelled with sharps.
var NoteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// naturals maps a natural note letter to its pitch class.
var naturals = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// defaultOctave is used when a name carries no octave ("E" means E4).
const defaultOctave = 4

// Note is an absolute pitch expressed as a semitone index where C4 = 60 and A4 = 69.
type Note int

// New converts an integer semitone index to a Note.
func New(n int) Note { return Note(n) }

// FromFrequency returns the nearest Note to the frequency f in Hz.
func FromFrequency(f float64) Note {
	return Note(int(math.Round(FreqToNumber(f))))
}

// Parse converts a note name such as "C#4", "Db4", "bb-1" or "E" into a Note.
// A plain decimal integer is accepted as a semitone index.
func Parse(s string) (Note, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Note(n), nil
	}

	pc, ok := naturals[upper(s[0])]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, s)
	}

	i := 1
	for ; i < len(s); i++ {
		switch s[i] {
		case '#':
			pc++
			continue
		case 'b':
			pc--
			continue
		}
		break
	}

	octave := defaultOctave
	if rest := s[i:]; rest != "" {
		o, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidName, s)
		}
		octave = o
	}
	return Note((octave+1)*12 + pc), nil
}

// MustParse is like Parse but panics on error. It is meant for literals.
func MustParse(s string) Note {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

// Int returns the semitone index.
func (n Note) Int() int { return int(n) }

// PitchClass returns the semitone index modulo 12, always in [0, 12).
func (n Note) PitchClass() int { return mod12(int(n)) }

// Octave returns the octave digit used in Name, accounting for the
// 12-semitone offset between the MIDI number and scientific octave numbering.
func (n Note) Octave() int { return floorDiv(int(n), 12) - 1 }

// Name returns the pitch class and octave, e.g. "A4".
func (n Note) Name() string {
	return NoteNames[n.PitchClass()] + strconv.Itoa(n.Octave())
}

// String implements fmt.Stringer.
func (n Note) String() string { return n.Name() }

// Transpose returns the note shifted by the given number of semitones.
func (n Note) Transpose(semitones int) Note { return n + Note(semitones) }

// Frequency returns the equal-tempered frequency of n in Hz.
func (n Note) Frequency() float64 { return NumberToFreq(float64(n)) }

// SamePitchClass reports whether a and b are equal modulo the octave.
func SamePitchClass(a, b Note) bool { return mod12(int(a)-int(b)) == 0 }

// ParseAll parses each name and stops at the first failure.
func ParseAll(names []string) ([]Note, error) {
	notes := make([]Note, 0, len(names))
	for _, name := range names {
		n, err := Parse(name)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Names renders notes with Name.
func Names(notes []Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Name()
	}
	return out
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func mod12(n int) int { return ((n % 12) + 12) % 12 }

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
