package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sparkify/internal/catalog"
)

func newResetCmd(d deps, fv *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the five sparkify tables",
		Long: `Drops songplays, users, songs, artists and time if they exist and creates
them empty, in the DDL flavor of the configured backend. All data is lost.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, d, *fv, runReset)
		},
	}
}

func runReset(ctx context.Context, s *session) error {
	stmts, err := catalog.Schema(s.store.Dialect())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := s.store.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("reset: %w", err)
		}
	}
	if err := s.store.Commit(ctx); err != nil {
		return err
	}
	s.log.Infof("%d tables created", len(catalog.Tables()))
	return nil
}
