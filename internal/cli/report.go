package cli

import (
	"context"

	"github.com/spf13/cobra"

	"sparkify/internal/report"
)

func newReportCmd(d deps, fv *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the analysis queries over the loaded tables",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, d, *fv, runReport)
		},
	}
}

func runReport(ctx context.Context, s *session) error {
	results, err := report.Run(ctx, s.store)
	if err != nil {
		return err
	}
	return report.Render(s.deps.stdout, results)
}
