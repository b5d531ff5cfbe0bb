// matctl tareas de administración sobre la base de datos: migraciones, oficinas base y
// usuario administrador inicial.
//
// Uso:
//
//	matctl migrate
//	matctl seed-offices [oficinas.csv] [--latin1]
//	matctl create-admin --username admin --password ********
//
// La conexión se toma de las mismas variables de entorno que la API (DB_*, DATABASE_URL).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/materiales-api/internal/infrastructure/postgres"
	"github.com/jhoicas/materiales-api/pkg/config"
	"github.com/jhoicas/materiales-api/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "matctl",
	Short: "Administración de materiales-api",
	Long: `Tareas de administración sobre PostgreSQL.

Comandos:
  migrate       - Aplica las migraciones pendientes
  seed-offices  - Crea las oficinas base y el aprobador por defecto
  create-admin  - Crea (o reporta) el usuario administrador inicial`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedOfficesCmd, createAdminCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// env configuración, logger y pool compartidos por los comandos.
type env struct {
	cfg  *config.Config
	log  zerolog.Logger
	pool *pgxpool.Pool
}

func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if cfg.DB.Driver != "postgres" {
		return nil, fmt.Errorf("matctl requiere DB_DRIVER=postgres (actual: %s)", cfg.DB.Driver)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "matctl"}).Zerolog()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &env{cfg: cfg, log: log, pool: pool}, nil
}
