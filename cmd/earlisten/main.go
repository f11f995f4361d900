// Command earlisten captures sung, played or keyed notes and runs ear-training
// quizzes against them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/earlisten/internal/logger"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logFile string
)

var rootCmd = &cobra.Command{
	Use:   "earlisten",
	Short: "Ear training with a microphone or a MIDI keyboard",
	Long: `earlisten listens to what you sing, play or key and compares it with
the notes you were asked for.

Examples:
  earlisten devices
  earlisten listen midi --notes 4 --wait-release
  earlisten listen mic --notes 3 --low E2 --high E5
  earlisten quiz --config session.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

// baseOptions returns the logging options shared by every command.
func baseOptions() []contracts.Option {
	level := contracts.WarnLevel
	if verbose {
		level = contracts.DebugLevel
	}
	opts := []contracts.Option{
		contracts.WithLogger(logger.NewZapLogger()),
		contracts.WithLogLevel(level),
	}
	if logFile != "" {
		opts = append(opts, contracts.WithLogFile(logFile))
	}
	return opts
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
