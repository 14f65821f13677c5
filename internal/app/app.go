// Package app bootstraps the process: configuration, logging, storage,
// services and the HTTP server. Its Must* functions panic on failure.
package app

// Serve runs the full server lifecycle.
func Serve() {
	cfg := bootstrap()
	defer CloseStorage()

	if cfg.Storage.AutoMigrate {
		MustMigrateStorage()
	}
	InitServices()
	if cfg.Seed.OnStart {
		MustSeed()
	}

	MustListenAndServeHTTP()
}

// Migrate applies the storage schema and exits.
func Migrate() {
	bootstrap()
	defer CloseStorage()

	MustMigrateStorage()
}

// Seed applies the schema, creates the bootstrap data and exits.
func Seed() {
	bootstrap()
	defer CloseStorage()

	MustMigrateStorage()
	InitServices()
	MustSeed()
}
