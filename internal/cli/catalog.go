package cli

import (
	"context"
	"fmt"
	"log"

	"esg-assessment-service/internal/config"
	"esg-assessment-service/internal/infra/file"
	"esg-assessment-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewCatalogCmd groups catalog maintenance commands.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage question catalogs",
	}

	var path string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Validate a YAML catalog and store it in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if path == "" {
				path = cfg.Catalog.Path
			}
			if path == "" {
				path = defaultCatalogPath
			}
			return importCatalog(cmd.Context(), cfg, path)
		},
	}
	importCmd.Flags().StringVar(&path, "file", "", "catalog file (defaults to catalog.path)")
	cmd.AddCommand(importCmd)
	return cmd
}

func importCatalog(ctx context.Context, cfg config.Config, path string) error {
	catalog, err := file.ReadCatalog(path)
	if err != nil {
		return err
	}
	if catalog.ID == "" {
		catalog.ID = cfg.Catalog.ID
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := postgres.NewCatalogLoader(pool).SaveCatalog(ctx, catalog); err != nil {
		return err
	}
	log.Printf("imported catalog %s (%d questions)", catalog.ID, len(catalog.Questions()))
	return nil
}
