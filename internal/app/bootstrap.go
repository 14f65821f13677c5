package app

import "github.com/adanyl0v/go-task-manager/internal/config"

func bootstrap() *config.Config {
	InitDefaultLogger()
	MustReadEnv()
	MustInitApplicationLogger()
	MustOpenStorage()
	return config.Global()
}
