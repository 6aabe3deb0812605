package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dineup/dineup/internal/config"
	"github.com/dineup/dineup/internal/deps"
	"github.com/dineup/dineup/internal/server"
	"github.com/dineup/dineup/internal/settlement"
	"github.com/dineup/dineup/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := config.NewConfig()
	storage, err := storage.NewPostgresStorage(ctx, config.DatabaseURI)
	if err != nil {
		config.Logger.Fatal(err)
	}

	deps := deps.NewDependencies(config.Key)
	settler := settlement.NewSettler(storage, deps.Logger)

	srv := server.NewServer(storage, settler, config, deps)
	if err := srv.Run(ctx); err != nil {
		config.Logger.Fatal(err)
	}
}
