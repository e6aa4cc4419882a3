package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HansKimDWR/MetSim/internal/preflight"
)

var (
	checkCreateOutDir bool
	checkConcurrency  int
)

var checkCmd = &cobra.Command{
	Use:   "check <config>",
	Short: "Validate a run configuration and check its paths",
	Long: `Validate a run configuration, then check its paths on disk:

- forcing matches at least one readable file (glob patterns allowed)
- domain and, when set, state are readable files
- out_dir is a directory, or its parent exists so it can be created

Every path problem is reported, not just the first.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkCreateOutDir, "create-out-dir", false, "create out_dir if it does not exist")
	checkCmd.Flags().IntVar(&checkConcurrency, "concurrency", 0, "forcing files probed at once (default 8)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	cfg, err := s.load(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := preflight.Check(ctx, cfg, preflight.Options{
		CreateOutDir: checkCreateOutDir,
		Concurrency:  checkConcurrency,
		Logger:       s.logger,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ %s is ready to run\n", args[0])
	fmt.Fprintf(out, "  forcing files: %d\n", len(res.ForcingFiles))
	for _, f := range res.ForcingFiles {
		fmt.Fprintf(out, "    %s\n", f)
	}
	if res.CreatedOutDir {
		fmt.Fprintf(out, "  created %s\n", cfg.Params().OutDir)
	}
	return nil
}
