package app

import (
	"context"

	"github.com/adanyl0v/go-task-manager/internal/config"
	"github.com/adanyl0v/go-task-manager/internal/seed"
)

func MustSeed() {
	cfg := config.Global().Seed

	data, err := seed.Load(cfg.File)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("file", cfg.File).
			Msg("failed to load seed data")
		panic(err)
	}

	seeder := seed.NewSeeder(
		componentLogger("seed"),
		globalServices.users,
		globalServices.statuses,
		globalServices.labels,
	)
	err = seeder.Run(context.Background(), seed.Admin{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}, data)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to seed")
		panic(err)
	}
}
