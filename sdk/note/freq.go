package note

import "math"

// Reference pitch: A4 is MIDI number 69 at 440 Hz.
const (
	ReferenceNumber    = 69
	ReferenceFrequency = 440.0
)

// FreqToNumber converts a frequency in Hz to a fractional MIDI number.
// 27.5 Hz (A0) maps to 21.
func FreqToNumber(f float64) float64 {
	return ReferenceNumber + 12*math.Log2(f/ReferenceFrequency)
}

// NumberToFreq converts a fractional MIDI number to a frequency in Hz.
func NumberToFreq(n float64) float64 {
	return ReferenceFrequency * math.Pow(2, (n-ReferenceNumber)/12)
}

// Range is an inclusive span of notes, typically an instrument's register.
type Range struct {
	Low  Note
	High Note
}

// DefaultRange spans E2 to C7, which covers guitar and most voices.
var DefaultRange = Range{Low: 40, High: 96}

// Valid reports whether the range is non-empty.
func (r Range) Valid() bool { return r.Low <= r.High }

// Contains reports whether n lies within the range.
func (r Range) Contains(n Note) bool { return n >= r.Low && n <= r.High }

// Notes lists every semitone in the range in ascending order.
func (r Range) Notes() []Note {
	if !r.Valid() {
		return nil
	}
	out := make([]Note, 0, int(r.High-r.Low)+1)
	for n := r.Low; n <= r.High; n++ {
		out = append(out, n)
	}
	return out
}
