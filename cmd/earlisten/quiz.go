package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/leandrodaf/earlisten/internal/config"
	"github.com/leandrodaf/earlisten/internal/quiz"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/input"
	"github.com/leandrodaf/earlisten/sdk/listener"
	"github.com/leandrodaf/earlisten/sdk/options"
	"github.com/spf13/cobra"
)

var (
	quizConfig   string
	quizListener string
	quizSave     string
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Ask random phrases and score the answers",
	Long: `quiz asks for random phrases within the session's register and scores
what you sing, play or type back. Pitch classes matter, octaves do not.`,
	Args: cobra.NoArgs,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().StringVarP(&quizConfig, "config", "c", "", "Session file (YAML)")
	quizCmd.Flags().StringVarP(&quizListener, "listener", "l", "", "Override the session listener: none, midi or microphone")
	quizCmd.Flags().StringVar(&quizSave, "save", "", "Write the effective session to this file and continue")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, args []string) error {
	session := config.Default()
	if quizConfig != "" {
		s, err := config.Load(quizConfig)
		if err != nil {
			return err
		}
		session = s
	}
	if quizListener != "" {
		session.Listener = quizListener
	}
	if err := session.Validate(); err != nil {
		return err
	}
	if quizSave != "" {
		if err := session.Save(quizSave); err != nil {
			return err
		}
	}

	sessionOpts, err := session.Options()
	if err != nil {
		return err
	}
	opts := append(baseOptions(), sessionOpts...)
	resolved, err := options.ResolveOptions(opts...)
	if err != nil {
		return err
	}
	log := resolved.Logger
	opts = append(opts, contracts.WithLogger(log))

	l, err := input.Load(session.Listener, opts...)
	switch {
	case errors.Is(err, contracts.ErrInputUnavailable):
		log.Warn("Input unavailable, answers will be typed", log.Field().Error("error", err))
		fmt.Fprintf(cmd.ErrOrStderr(), "%v; falling back to typed answers\n", err)
		l = listener.NoListener{}
	case err != nil:
		return err
	}
	defer l.Close()

	rng, _ := session.Range()
	classes, _ := session.Classes()
	seed := uint64(time.Now().UnixNano())
	r := &quiz.Runner{
		Listener:      l,
		Generate:      quiz.PhraseGenerator(rand.New(rand.NewPCG(seed, seed>>1)), rng, classes, session.MaxInterval, session.NotesPerPhrase),
		In:            cmd.InOrStdin(),
		Out:           cmd.OutOrStdout(),
		Logger:        log,
		ListenTimeout: session.ListenTimeout,
		Pause:         3 * session.Beat(),
	}
	final, err := r.Run(cmd.Context())
	if final.Count > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), final.String())
	}
	return err
}
