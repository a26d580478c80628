package main

import (
	"flag"
	"os"

	"github.com/kdv2001/apiMock/internal/config"
)

type flags struct {
	configPath  string
	serverAddr  string
	databaseDSN string
	fixturesDir string
	upstream    string
}

func initFlags() flags {
	configPath := flag.String("c", "", "path to YAML config file")
	serverAddr := flag.String("a", "", "The address to bind the server to")
	databaseDSN := flag.String("d", "", "postgres DSN; fixtures are kept in memory when empty")
	fixturesDir := flag.String("f", "", "directory to seed in-memory fixtures from")
	upstream := flag.String("u", "", "upstream API URL to proxy API requests to")

	flag.Parse()

	if value := os.Getenv("CONFIG"); value != "" {
		configPath = &value
	}
	if value := os.Getenv("ADDRESS"); value != "" {
		serverAddr = &value
	}
	if value := os.Getenv("DATABASE_DSN"); value != "" {
		databaseDSN = &value
	}
	if value := os.Getenv("FIXTURES_DIR"); value != "" {
		fixturesDir = &value
	}
	if value := os.Getenv("UPSTREAM_URL"); value != "" {
		upstream = &value
	}

	return flags{
		configPath:  *configPath,
		serverAddr:  *serverAddr,
		databaseDSN: *databaseDSN,
		fixturesDir: *fixturesDir,
		upstream:    *upstream,
	}
}

// apply переопределяет значения файла конфигурации заданными флагами.
func (f flags) apply(cfg *config.Config) {
	if f.serverAddr != "" {
		cfg.Address = f.serverAddr
	}
	if f.databaseDSN != "" {
		cfg.DatabaseDSN = f.databaseDSN
	}
	if f.fixturesDir != "" {
		cfg.FixturesDir = f.fixturesDir
	}
	if f.upstream != "" {
		cfg.Upstream = f.upstream
	}
}
