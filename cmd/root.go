package cmd

import (
	"io"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

// options are the flags shared by every subcommand
type options struct {
	provider    string
	model       string
	catalogPath string
	verbose     bool
	logFile     string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cineverse",
		Short: "Movie discovery powered by generative text models",
		Long: `CineVerse builds movie listings from a text-generation model.

The home catalog is loaded one section at a time, searches run as their own
session, and movies you add yourself stay in memory for the current session only.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			setupLogging(cmd.ErrOrStderr(), opts.verbose, opts.logFile)
		},
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.provider, "provider", "", "Generation provider: gemini, ollama or openai (default $CINEVERSE_PROVIDER or gemini)")
	flags.StringVar(&opts.model, "model", "", "Model name (defaults to provider's default)")
	flags.StringVar(&opts.catalogPath, "catalog", "", "YAML file replacing the built-in catalog sections")
	flags.BoolVar(&opts.verbose, "verbose", false, "Verbose logging")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to a rotating file instead of stderr")

	cmd.AddCommand(newBrowseCmd(opts))
	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newSessionCmd(opts))
	cmd.AddCommand(newCatalogCmd(opts))

	return cmd
}

func setupLogging(stderr io.Writer, verbose bool, logFile string) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	w := stderr
	if logFile != "" {
		w = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		if !verbose {
			level = slog.LevelInfo
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
