// Command migrate aplica o revierte el esquema de PostgreSQL.
//
//	migrate up | down | version
//	migrate steps <n>
//	migrate force <version>
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "uso: migrate [up | down | version | steps <n> | force <version>]")
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	mg, err := postgres.NewMigrator(cfg.DB.MigrateURL(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migrador")
	}
	defer mg.Close()

	if err := run(mg, cmd, flag.Args()); err != nil {
		log.Error().Err(err).Str("cmd", cmd).Msg("migración fallida")
		mg.Close()
		os.Exit(1)
	}
}

func run(mg *postgres.Migrator, cmd string, args []string) error {
	switch cmd {
	case "up":
		return mg.Up()
	case "down":
		return mg.Down()
	case "version":
		v, dirty, err := mg.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return nil
	case "steps", "force":
		if len(args) < 2 {
			return fmt.Errorf("%s requiere un número", cmd)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "steps" {
			return mg.Steps(n)
		}
		return mg.Force(n)
	}
	flag.Usage()
	return fmt.Errorf("comando desconocido: %s", cmd)
}
