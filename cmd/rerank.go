package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/signalnine/solverbench/internal/ranking"
	"github.com/signalnine/solverbench/internal/report"
	"github.com/signalnine/solverbench/internal/result"
)

func newRerankCmd(a *app) *cobra.Command {
	var policy, format string
	cmd := &cobra.Command{
		Use:   "rerank <result-dir>",
		Short: "Re-rank a stored result with another ranking policy",
		Long: "Load a stored result, rank its solvers with the given policy and write it back. " +
			"Scores and statistics are left untouched.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranker, err := ranking.ByName(policy)
			if err != nil {
				return fmt.Errorf("%w (known: %v)", err, ranking.Names())
			}
			r, err := readStored(args[0])
			if err != nil {
				return err
			}
			before := favoriteName(r)
			if err := r.Rerank(ranker); err != nil {
				return err
			}
			if err := result.WriteResult(r.ReportDirectory, r); err != nil {
				return err
			}
			slog.Info("result re-ranked", "dir", r.ReportDirectory, "policy", policy, "favorite_before", before, "favorite_after", favoriteName(r))
			return report.Generate(r, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&policy, "ranking", ranking.PolicyTotalScore, "ranking policy")
	cmd.Flags().StringVar(&format, "format", report.FormatTable, "output format (table, markdown, json)")
	return cmd
}

func favoriteName(r *result.BenchmarkResult) string {
	if fav := r.Favorite(); fav != nil {
		return fav.Name()
	}
	return ""
}
