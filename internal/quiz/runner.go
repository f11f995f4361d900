package quiz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
)

// Runner asks questions in a loop until the player quits, the input ends or
// ctx is cancelled.
//
// With a listener the answer is captured by it. A listener that does not
// evaluate (contracts.ErrNoEvaluation) switches the runner to typed answers
// read from In: note names, an empty line to hear the question again, or q
// to quit.
type Runner struct {
	Listener contracts.Listener
	Generate Generator
	In       io.Reader
	Out      io.Writer
	Logger   contracts.Logger

	// ListenTimeout bounds each listen; zero waits for the whole phrase.
	ListenTimeout time.Duration
	// Pause is waited between questions so the player can reset.
	Pause time.Duration

	Session Session
}

var errQuit = errors.New("quit")

// Run plays until the end and returns the final session.
func (r *Runner) Run(ctx context.Context) (Session, error) {
	lines := bufio.NewScanner(r.In)
	typed := false

	fmt.Fprintln(r.Out, "And away we go!")
	q, err := Next(Question{}, r.Generate)
	if err != nil {
		return r.Session, err
	}
	for {
		if q.State == Fresh && r.Session.Count > 0 {
			fmt.Fprintln(r.Out, r.Session.String())
		}
		r.Session.Ask(q)
		fmt.Fprintf(r.Out, "Question: %d notes, starting near %s\n", len(q.Notes), q.Notes[0])

		var ev Evaluation
		if !typed {
			ev, err = r.listen(ctx, q)
			switch {
			case errors.Is(err, context.Canceled):
				return r.Session, nil
			case err != nil:
				return r.Session, err
			}
			typed = !ev.Scored
		}
		if typed {
			ev, err = r.typed(lines, q)
			switch {
			case errors.Is(err, errQuit), errors.Is(err, io.EOF):
				return r.Session, nil
			case errors.Is(err, contracts.ErrInputNotUnderstood):
				fmt.Fprintln(r.Out, "Input not understood, asking again.")
				q = RepeatQuestion(q)
				continue
			case err != nil:
				return r.Session, err
			}
			if !ev.Scored {
				q = RepeatQuestion(q)
				continue
			}
		}

		r.report(ev)
		if err := r.pause(ctx); err != nil {
			return r.Session, nil
		}
		if q, err = Next(q, r.Generate); err != nil {
			return r.Session, err
		}
	}
}

func (r *Runner) listen(ctx context.Context, q Question) (Evaluation, error) {
	if r.ListenTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.ListenTimeout)
		defer cancel()
	}
	ev, err := r.Session.Evaluate(ctx, r.Listener, q)
	if errors.Is(err, context.DeadlineExceeded) {
		// Time is up: grade whatever was heard.
		if r.Logger != nil {
			r.Logger.Info("Listen timed out", r.Logger.Field().Int("heard", len(ev.Detected)))
		}
		return r.Session.Grade(q, ev.Detected), nil
	}
	return ev, err
}

// typed reads one answer line. An unscored evaluation means the player
// asked to hear the question again.
func (r *Runner) typed(lines *bufio.Scanner, q Question) (Evaluation, error) {
	fmt.Fprint(r.Out, "Your answer (Enter to repeat, q to quit): ")
	if !lines.Scan() {
		if err := lines.Err(); err != nil {
			return Evaluation{}, err
		}
		return Evaluation{}, io.EOF
	}
	text := strings.TrimSpace(lines.Text())
	switch strings.ToLower(text) {
	case "":
		return Evaluation{Question: q}, nil
	case "q", "quit":
		return Evaluation{}, errQuit
	}
	notes, err := ParseAnswer(text)
	if err != nil {
		return Evaluation{}, err
	}
	return r.Session.Grade(q, notes), nil
}

func (r *Runner) report(ev Evaluation) {
	fmt.Fprintln(r.Out, "Correct answer:", strings.Join(note.Names(ev.Question.Notes), " "))
	fmt.Fprintln(r.Out, "Your answer:   ", strings.Join(note.Names(ev.Detected), " "))
	if ev.Result.Mismatch != note.LengthOK {
		fmt.Fprintf(r.Out, "(%s)\n", ev.Result.Mismatch)
	}
	if ev.Result.AllCorrect {
		fmt.Fprintln(r.Out, "Good Job!")
	} else {
		fmt.Fprintln(r.Out, "It's ok, you'll get 'em next time.")
	}
	fmt.Fprintln(r.Out)
}

func (r *Runner) pause(ctx context.Context) error {
	if r.Pause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(r.Pause)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
