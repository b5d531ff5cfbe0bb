package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/materiales-api/internal/infrastructure/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica las migraciones SQL pendientes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer e.pool.Close()

		applied, err := postgres.Migrate(cmd.Context(), e.pool, e.log)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "aplicada %s\n", name)
		}
		return nil
	},
}
