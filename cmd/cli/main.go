package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/slidedeck/internal/cli"
	"github.com/dmitrijs2005/slidedeck/internal/flagx"
	"github.com/dmitrijs2005/slidedeck/internal/logging"
	"github.com/dmitrijs2005/slidedeck/internal/server/config"
	"github.com/dmitrijs2005/slidedeck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/slidedeck/internal/server/services"
)

func main() {

	ctx := context.Background()
	command, _ := flagx.SplitCommand(os.Args[1:])
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogBackend, cfg.LogLevel)
	if err != nil {
		log.Fatalf("%v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	app := cli.NewApp(db, m, services.NewUserService(db, m, cfg, logger), os.Stdin, os.Stdout)

	if err := app.Run(ctx, command); err != nil {
		db.Close()
		log.Fatalf("%v", err)
	}

}
