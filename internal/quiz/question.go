// Package quiz drives ear-training questions: it generates phrases, keeps
// track of whether a question is new or replayed, and scores answers.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
)

// ErrNoCandidates is returned when no note satisfies the phrase constraints.
var ErrNoCandidates = errors.New("no candidate notes")

// State tells a new question from a replay of the previous one.
type State int

const (
	Fresh State = iota
	Repeat
)

func (s State) String() string {
	if s == Repeat {
		return "repeat"
	}
	return "fresh"
}

// Question is a phrase the player has to reproduce.
type Question struct {
	Notes []note.Note
	State State
}

// Last returns the final note of the phrase.
func (q Question) Last() (note.Note, bool) {
	if len(q.Notes) == 0 {
		return 0, false
	}
	return q.Notes[len(q.Notes)-1], true
}

// Generator produces the notes of the next phrase. prev is the last note of
// the previous phrase, or nil for the first one.
type Generator func(prev *note.Note) ([]note.Note, error)

// Next returns a fresh question that continues from prev.
func Next(prev Question, gen Generator) (Question, error) {
	var last *note.Note
	if n, ok := prev.Last(); ok {
		last = &n
	}
	notes, err := gen(last)
	if err != nil {
		return Question{}, err
	}
	if len(notes) == 0 {
		return Question{}, fmt.Errorf("%w: empty phrase", ErrNoCandidates)
	}
	return Question{Notes: notes, State: Fresh}, nil
}

// RepeatQuestion replays prev unchanged.
func RepeatQuestion(prev Question) Question {
	return Question{Notes: prev.Notes, State: Repeat}
}

// RandomPhrase picks n notes inside rng whose pitch class is in classes,
// each at most maxInterval semitones from the one before. Without prev the
// walk starts from a random candidate.
func RandomPhrase(r *rand.Rand, rng note.Range, classes []int, maxInterval, n int, prev *note.Note) ([]note.Note, error) {
	allowed := make(map[int]bool, len(classes))
	for _, pc := range classes {
		allowed[((pc%12)+12)%12] = true
	}
	var candidates []note.Note
	for _, c := range rng.Notes() {
		if allowed[c.PitchClass()] {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: range %s-%s", ErrNoCandidates, rng.Low, rng.High)
	}

	var last note.Note
	if prev != nil {
		last = *prev
	} else {
		last = candidates[r.IntN(len(candidates))]
	}

	notes := make([]note.Note, 0, n)
	near := make([]note.Note, 0, len(candidates))
	for k := 0; k < n; k++ {
		near = near[:0]
		for _, c := range candidates {
			if d := int(c - last); d <= maxInterval && d >= -maxInterval {
				near = append(near, c)
			}
		}
		if len(near) == 0 {
			return nil, fmt.Errorf("%w: within %d semitones of %s", ErrNoCandidates, maxInterval, last)
		}
		last = near[r.IntN(len(near))]
		notes = append(notes, last)
	}
	return notes, nil
}

// PhraseGenerator returns a Generator calling RandomPhrase with fixed settings.
func PhraseGenerator(r *rand.Rand, rng note.Range, classes []int, maxInterval, n int) Generator {
	return func(prev *note.Note) ([]note.Note, error) {
		return RandomPhrase(r, rng, classes, maxInterval, n, prev)
	}
}

// ParseAnswer reads whitespace or comma separated note names.
func ParseAnswer(text string) ([]note.Note, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty answer", contracts.ErrInputNotUnderstood)
	}
	notes, err := note.ParseAll(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrInputNotUnderstood, err)
	}
	return notes, nil
}
