package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/materiales-api/internal/application/usecase"
	"github.com/jhoicas/materiales-api/internal/infrastructure/postgres"
)

var adminOpts struct {
	username string
	password string
	name     string
	email    string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Crea el usuario administrador inicial",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(adminOpts.password) < 8 {
			return fmt.Errorf("--password debe tener al menos 8 caracteres")
		}
		ctx := cmd.Context()
		e, err := connect(ctx)
		if err != nil {
			return err
		}
		defer e.pool.Close()

		uc := usecase.NewUserUseCase(
			postgres.NewUserRepository(e.pool),
			postgres.NewOfficeRepository(e.pool),
			postgres.NewApproverRepository(e.pool),
		)
		u, created, err := uc.EnsureAdmin(ctx, adminOpts.username, adminOpts.password, adminOpts.name, adminOpts.email)
		if err != nil {
			return err
		}
		if !created {
			fmt.Fprintf(cmd.OutOrStdout(), "el usuario %s ya existe\n", adminOpts.username)
			return nil
		}
		e.log.Info().Str("user_id", u.ID).Str("username", u.Username).Msg("administrador creado")
		return nil
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminOpts.username, "username", "admin", "usuario")
	f.StringVar(&adminOpts.password, "password", "", "contraseña (mínimo 8 caracteres)")
	f.StringVar(&adminOpts.name, "name", "Administrador", "nombre completo")
	f.StringVar(&adminOpts.email, "email", "", "correo")
	_ = createAdminCmd.MarkFlagRequired("password")
}
