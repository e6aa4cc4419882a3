package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HansKimDWR/MetSim/internal/config"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/logging"
	"github.com/HansKimDWR/MetSim/internal/runcfg"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// Global flags
	verbose     bool
	workDir     string
	errorFormat string
)

var rootCmd = &cobra.Command{
	Use:   "metsim",
	Short: "MetSim run configuration tool",
	Long: `metsim loads, validates and rewrites MetSim run configuration documents.

A run document names the simulation period and time step, the forcing,
domain and state datasets, and the variables to write. Documents may be
written as YAML, TOML, INI (.conf) or HCL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if errorFormat != "text" && errorFormat != "json" {
			return fmt.Errorf("invalid --error-format %q (valid: text, json)", errorFormat)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&workDir, "workdir", "C", "", "working directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&errorFormat, "error-format", "text", "error output format (text, json)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("metsim {{.Version}}\n")
}

// ReportError writes a failed command's error to w. With --error-format json
// every coded error becomes one JSON object per line; joined errors, such
// as the violations reported by check, are written one per line.
func ReportError(w io.Writer, err error) {
	if errorFormat != "json" {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}
	enc := json.NewEncoder(w)
	for _, e := range leafErrors(err) {
		var merr *mserr.MetSimError
		var v any = struct {
			Message string `json:"message"`
		}{e.Error()}
		if errors.As(e, &merr) {
			v = merr
		}
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(w, "Error: %v\n", e)
		}
	}
}

// leafErrors flattens errors.Join trees into their members.
func leafErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, leafErrors(e)...)
		}
		return out
	}
	return []error{err}
}

// getWorkDir returns the effective working directory.
func getWorkDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

// session carries the settings and logger shared by every command.
type session struct {
	dir    string
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func newSession(cmd *cobra.Command) (*session, error) {
	dir, err := getWorkDir()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = config.LogLevelDebug
	}

	logger, closer, err := logging.NewFromConfig(cfg, dir, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &session{
		dir:    dir,
		cfg:    cfg,
		logger: logging.WithCommand(logger, cmd.Name()),
		closer: closer,
	}, nil
}

func (s *session) Close() {
	if s.closer != nil {
		s.closer.Close()
	}
}

// resolve makes a command-line path relative to the working directory.
func (s *session) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

func (s *session) load(path string) (*runcfg.RunConfig, error) {
	loader := &runcfg.Loader{Logger: s.logger}
	return loader.Load(s.resolve(path))
}
