package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/solverbench/internal/config"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured solvers and problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Solvers:")
			for _, s := range cfg.Solvers {
				target := s.Image
				if s.Driver != config.DriverDocker {
					target = fmt.Sprint(s.Command)
				}
				fmt.Fprintf(w, "  - %s (%s: %s)\n", s.Name, s.Driver, target)
			}
			fmt.Fprintln(w, "\nProblems:")
			for _, p := range cfg.Problems {
				scale := "unknown scale"
				if p.ProblemScale != nil {
					scale = fmt.Sprintf("scale %d", *p.ProblemScale)
				}
				fmt.Fprintf(w, "  - %s [%s]\n", p.Name, scale)
			}
			fmt.Fprintf(w, "\nRanking: %s, %d sub-run(s), %d in parallel\n", cfg.Ranking.Policy(), cfg.SubRunCount, cfg.ParallelBenchmarkCount)
			return nil
		},
	}
}
