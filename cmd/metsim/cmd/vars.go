package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HansKimDWR/MetSim/internal/vocab"
)

var varsRole string

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "List the variable keys each section accepts",
	Long: `List the variable vocabulary of each section role:

  out      out_vars
  forcing  forcing_vars and constant_vars
  state    state_vars
  domain   domain_vars`,
	Args: cobra.NoArgs,
	RunE: runVars,
}

func init() {
	varsCmd.Flags().StringVar(&varsRole, "role", "", "only list one role (out, forcing, state, domain)")
	rootCmd.AddCommand(varsCmd)
}

func runVars(cmd *cobra.Command, args []string) error {
	roles := vocab.Roles
	if varsRole != "" {
		role, ok := vocab.ParseRole(varsRole)
		if !ok {
			return fmt.Errorf("unknown role %q (valid: out, forcing, state, domain)", varsRole)
		}
		roles = []vocab.Role{role}
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tKEY\tUNITS\tDESCRIPTION")
	for _, role := range roles {
		for _, v := range vocab.Variables(role) {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", role, v.Key, v.Units, v.Description)
		}
	}
	return w.Flush()
}
