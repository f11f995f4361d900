package note

// LengthMismatch describes how the number of detected notes compares to the
// number expected.
type LengthMismatch int

const (
	LengthOK LengthMismatch = iota
	TooFew
	TooMany
)

func (m LengthMismatch) String() string {
	switch m {
	case TooFew:
		return "too few answers"
	case TooMany:
		return "too many answers"
	default:
		return "ok"
	}
}

// MatchResult is the outcome of comparing detected notes with expected notes.
type MatchResult struct {
	// PerNote has one entry per expected note. Positions with no detected
	// note are false.
	PerNote    []bool
	AllCorrect bool
	Mismatch   LengthMismatch
}

// Correct returns the number of matching positions.
func (r MatchResult) Correct() int {
	c := 0
	for _, ok := range r.PerNote {
		if ok {
			c++
		}
	}
	return c
}

// Match compares detected against expected position by position using pitch
// class equivalence. Extra or missing detections are reported through
// Mismatch; the positions that exist are still scored.
func Match(detected, expected []Note) MatchResult {
	res := MatchResult{PerNote: make([]bool, len(expected))}
	for i := range expected {
		if i < len(detected) {
			res.PerNote[i] = SamePitchClass(detected[i], expected[i])
		}
	}

	switch {
	case len(detected) < len(expected):
		res.Mismatch = TooFew
	case len(detected) > len(expected):
		res.Mismatch = TooMany
	}

	res.AllCorrect = res.Mismatch == LengthOK
	for _, ok := range res.PerNote {
		res.AllCorrect = res.AllCorrect && ok
	}
	return res
}
