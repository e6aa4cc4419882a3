package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HansKimDWR/MetSim/internal/document"
	mserr "github.com/HansKimDWR/MetSim/internal/errors"
	"github.com/HansKimDWR/MetSim/internal/runcfg"
)

var (
	convertFormat string
	convertForce  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <config> <output>",
	Short: "Rewrite a run configuration in another format",
	Long: `Load a run configuration and write its canonical form to a new file.

The output format is taken from the output file extension (.yaml, .yml,
.toml, .conf, .ini, .cfg, .hcl) unless --format is given. The input is
validated first; nothing is written for an invalid document.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "output format (default: from the output extension)")
	convertCmd.Flags().BoolVar(&convertForce, "force", false, "overwrite an existing output file")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	out := s.resolve(args[1])

	var format document.Format
	if convertFormat != "" {
		format, err = document.ParseFormat(convertFormat)
	} else {
		format, err = document.DetectFormat(out)
	}
	if err != nil {
		return err
	}

	cfg, err := s.load(args[0])
	if err != nil {
		return err
	}

	if !convertForce {
		if _, err := os.Stat(out); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", args[1])
		}
	}

	data, err := runcfg.Marshal(cfg, format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return mserr.IOWriteError(out, err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return mserr.IOWriteError(out, err)
	}

	s.logger.Debug("wrote run config", "path", out, "format", format)
	fmt.Fprintf(cmd.OutOrStdout(), "Converted %s (%s) to %s (%s)\n", args[0], cfg.Format(), args[1], format)
	return nil
}
