package cmd

import (
	"github.com/spf13/cobra"

	"github.com/HansKimDWR/MetSim/internal/document"
	"github.com/HansKimDWR/MetSim/internal/runcfg"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show <config>",
	Short: "Print the canonical form of a run configuration",
	Long: `Load a run configuration and print it with every default filled in and
every path absolute. The output loads back to the same configuration.

The format defaults to [output] format from .metsim/config.toml.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "", "output format (yaml, toml, ini, hcl)")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	format := s.cfg.OutputFormat()
	if showFormat != "" {
		if format, err = document.ParseFormat(showFormat); err != nil {
			return err
		}
	}

	cfg, err := s.load(args[0])
	if err != nil {
		return err
	}

	data, err := runcfg.Marshal(cfg, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
