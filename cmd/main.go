package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Foodgram/cmd/config"
	migration "Foodgram/cmd/database/migrate"
	"Foodgram/domain"
	"Foodgram/internal/logging"
	"Foodgram/internal/utils"
	"Foodgram/pkg/catalog"
	"Foodgram/pkg/user"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

func main() {
	root := &cli.Command{
		Name:  "foodgram",
		Usage: "Recipe sharing backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the yaml config file"},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			utils.LoadConfigFile(c.String("config"))
			cfg := logging.DefaultConfig()
			cfg.Level = utils.GetConfig("LOG_LEVEL")
			cfg.Format = utils.GetConfig("LOG_FORMAT")
			logging.Init(cfg)
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			loadIngredientsCommand(),
			loadTagsCommand(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return serve(ctx, utils.GetConfig("APP_PORT"))
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		logging.Err(err).Msg("foodgram exited with error")
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Migrate the database and run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port, overrides APP_PORT"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			port := c.String("port")
			if port == "" {
				port = utils.GetConfig("APP_PORT")
			}
			return serve(ctx, port)
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := openDB()
			return err
		},
	}
}

func loadIngredientsCommand() *cli.Command {
	return &cli.Command{
		Name:  "load-ingredients",
		Usage: "Bulk load ingredients from a delimited file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "path to the ingredients file"},
			&cli.StringFlag{Name: "delimiter", Value: string(catalog.DefaultDelimiter), Usage: "field delimiter"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			delimiter := []rune(c.String("delimiter"))
			if len(delimiter) != 1 {
				return fmt.Errorf("delimiter must be a single character, got %q", c.String("delimiter"))
			}
			return loadCatalog(ctx, c.String("file"), "ingredient", func(s catalog.CatalogService, f *os.File) (domain.LoadReport, error) {
				return catalog.LoadIngredients(ctx, s, f, delimiter[0])
			})
		},
	}
}

func loadTagsCommand() *cli.Command {
	return &cli.Command{
		Name:  "load-tags",
		Usage: "Bulk load tags from a yaml file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "path to the tags yaml file"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return loadCatalog(ctx, c.String("file"), "tag", func(s catalog.CatalogService, f *os.File) (domain.LoadReport, error) {
				return catalog.LoadTags(ctx, s, f)
			})
		},
	}
}

func loadCatalog(ctx context.Context, path, kind string, load func(catalog.CatalogService, *os.File) (domain.LoadReport, error)) error {
	db, err := openDB()
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	utils.InitValidator()
	service := catalog.NewCatalogService(catalog.NewCatalogRepository(db), utils.Validate)
	report, err := load(service, file)
	if err != nil {
		return err
	}

	logging.Info().
		Str("kind", kind).
		Str("file", path).
		Int("read", report.Read).
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Msg("catalog loaded")
	return nil
}

func openDB() (*gorm.DB, error) {
	db, err := config.ConnectDB()
	if err != nil {
		return nil, err
	}
	if err := migration.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func serve(ctx context.Context, port string) error {
	jwtService, err := config.NewJWTService()
	if err != nil {
		return err
	}
	db, err := openDB()
	if err != nil {
		return err
	}

	users := user.NewUserService(user.NewUserRepository(db), jwtService)
	if err := users.EnsureAdmin(ctx, utils.GetConfig("ADMIN_EMAIL"), utils.GetConfig("ADMIN_PASSWORD")); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	app, err := config.NewApp(db)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("port", port).Msg("http server listening")
		errCh <- app.Listen(":" + port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
