package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/solverbench/internal/report"
	"github.com/signalnine/solverbench/internal/result"
)

func newReportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report [result-dir]",
		Short: "Render a stored benchmark result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) > 0 {
				dir = args[0]
			} else {
				cfg, err := a.loadConfig()
				if err != nil {
					return err
				}
				dir = filepath.Join(cfg.Results.Dir, "latest")
			}
			r, err := readStored(dir)
			if err != nil {
				return err
			}
			return report.Generate(r, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&format, "format", report.FormatTable, "output format (table, markdown, json)")
	return cmd
}

// readStored loads a result from a report directory or a result file.
func readStored(path string) (*result.BenchmarkResult, error) {
	file, err := resultFile(path)
	if err != nil {
		return nil, err
	}
	return readResultFile(file)
}

// resultFile resolves a report directory or result file to the canonical
// path of its result file.
func resultFile(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolving result dir: %w", err)
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return filepath.Join(resolved, result.ResultFileName), nil
	}
	return resolved, nil
}

func readResultFile(file string) (*result.BenchmarkResult, error) {
	r, err := result.ReadResult(file)
	if err != nil {
		return nil, err
	}
	r.ReportDirectory = filepath.Dir(file)
	return r, nil
}
