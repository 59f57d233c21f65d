package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yuanying/linkpub/internal/auth"
	"github.com/yuanying/linkpub/internal/bookmarks"
	"github.com/yuanying/linkpub/internal/epub"
	"github.com/yuanying/linkpub/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("listen", "", "Listen address (default: from config)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Paths.Listen = listen
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	pipeline, err := newPipeline(cfg, logger, true)
	if err != nil {
		return err
	}
	users, err := auth.NewStore(cfg.UsersFile(), logger)
	if err != nil {
		return err
	}
	variant, err := epub.ParseVariant(cfg.EPUB.DefaultVariant)
	if err != nil {
		return err
	}

	srv := server.New(server.Deps{
		Pipeline:  pipeline,
		Users:     users,
		Tokens:    auth.NewTokens(cfg.Auth.JWTSecret, cfg.TokenTTL()),
		Bookmarks: bookmarks.NewSource(feedClient(cfg), cfg.Bookmarks.Limit, logger),
		Logger:    logger,
	}, server.Options{
		AllowRegistration: cfg.Auth.AllowRegistration,
		CookieSecure:      cfg.Auth.CookieSecure,
		DefaultVariant:    variant,
		DefaultFeedURL:    cfg.Bookmarks.FeedURL,
		StaticDir:         cfg.Paths.StaticDir,
	})

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("linkpub starting",
		"listen", cfg.Paths.Listen,
		"data_dir", cfg.Paths.DataDir,
		"registration", cfg.Auth.AllowRegistration)
	return srv.Run(ctx, cfg.Paths.Listen)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
