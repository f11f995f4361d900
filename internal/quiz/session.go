package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
)

// Evaluation is the outcome of one answer.
type Evaluation struct {
	Question Question
	Detected []note.Note
	Result   note.MatchResult
	Scored   bool // false when the listener does not evaluate answers.
}

// Session keeps the running score. A question counts once, when it is
// first asked, and can be credited at most once however often it is replayed.
type Session struct {
	Score int
	Count int

	credited bool
}

// Ask registers q. Fresh questions increase Count.
func (s *Session) Ask(q Question) {
	if q.State == Fresh {
		s.Count++
		s.credited = false
	}
}

// Grade matches detected against q and updates the score.
func (s *Session) Grade(q Question, detected []note.Note) Evaluation {
	res := note.Match(detected, q.Notes)
	if res.AllCorrect && !s.credited {
		s.Score++
		s.credited = true
	}
	return Evaluation{Question: q, Detected: detected, Result: res, Scored: true}
}

// Evaluate listens for the answer to q through l and grades it. A listener
// returning contracts.ErrNoEvaluation gives an unscored evaluation.
func (s *Session) Evaluate(ctx context.Context, l contracts.Listener, q Question) (Evaluation, error) {
	detected, err := l.ListenNotes(ctx, q.Notes)
	switch {
	case errors.Is(err, contracts.ErrNoEvaluation):
		return Evaluation{Question: q}, nil
	case err != nil:
		return Evaluation{Question: q, Detected: detected}, err
	}
	return s.Grade(q, detected), nil
}

// Ratio is Score/Count, or 0 before the first question.
func (s *Session) Ratio() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Count)
}

func (s *Session) String() string {
	return fmt.Sprintf("score: %d / %d = %.2f%%", s.Score, s.Count, 100*s.Ratio())
}
