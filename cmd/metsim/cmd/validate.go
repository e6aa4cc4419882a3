package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HansKimDWR/MetSim/internal/runcfg"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Validate a run configuration",
	Long: `Validate a MetSim run configuration without running anything.

Checks:
- Document syntax (YAML, TOML, INI or HCL)
- Required MetSim fields and their types
- Time step, period and option ranges
- Variable keys against each section's vocabulary
- Constants that duplicate a forcing variable

Paths are resolved but not opened; use 'metsim check' for that.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg, err := s.load(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid (%s)\n\n", args[0], cfg.Format())
	return writeSummary(cmd, cfg)
}

func writeSummary(cmd *cobra.Command, cfg *runcfg.RunConfig) error {
	p := cfg.Params()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "period:\t%s to %s (%d days)\n", p.Start, p.Stop, cfg.Days())
	fmt.Fprintf(w, "time step:\t%d minutes (%d per day)\n", p.TimeStep, cfg.StepsPerDay())
	fmt.Fprintf(w, "forcing:\t%s (%s)\n", p.Forcing, p.ForcingFmt)
	fmt.Fprintf(w, "domain:\t%s\n", p.Domain)
	if p.State != "" {
		fmt.Fprintf(w, "state:\t%s\n", p.State)
	}
	fmt.Fprintf(w, "output:\t%s/%s*\n", p.OutDir, p.OutPrefix)
	fmt.Fprintf(w, "out_vars:\t%d\t%s\n", cfg.OutVars().Len(), strings.Join(cfg.OutVars().Keys(), " "))
	fmt.Fprintf(w, "chunks:\t%d\t%s\n", cfg.Chunks().Len(), chunkList(cfg.Chunks()))
	fmt.Fprintf(w, "forcing_vars:\t%d\t%s\n", cfg.ForcingVars().Len(), strings.Join(cfg.ForcingVars().Keys(), " "))
	fmt.Fprintf(w, "state_vars:\t%d\t%s\n", cfg.StateVars().Len(), strings.Join(cfg.StateVars().Keys(), " "))
	fmt.Fprintf(w, "domain_vars:\t%d\t%s\n", cfg.DomainVars().Len(), strings.Join(cfg.DomainVars().Keys(), " "))
	fmt.Fprintf(w, "constant_vars:\t%d\t%s\n", cfg.ConstantVars().Len(), strings.Join(cfg.ConstantVars().Keys(), " "))
	return w.Flush()
}

func chunkList(c runcfg.ChunkSpec) string {
	parts := make([]string, 0, c.Len())
	for _, k := range c.Keys() {
		n, _ := c.Get(k)
		parts = append(parts, fmt.Sprintf("%s=%d", k, n))
	}
	return strings.Join(parts, " ")
}
