package main

import (
	"github.com/go-petr/bank-backoffice/cmd/httpserver"
	"github.com/go-petr/bank-backoffice/internal/middleware"
	"github.com/go-petr/bank-backoffice/pkg/configpkg"
	"github.com/go-petr/bank-backoffice/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		panic("cannot load config")
	}

	logger := middleware.GetLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	server, err := httpserver.New(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	logger.Info().Msgf("listening on %s", config.ServerAddress)

	if err := server.Engine.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}
