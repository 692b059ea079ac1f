// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fishobs/fieldsync/internal/client"
	"github.com/fishobs/fieldsync/internal/config"
	"github.com/fishobs/fieldsync/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetClientConfig(os.Args[1:])
	if err != nil {
		logger.NewLogger("fieldsync-client").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("fieldsync-client", cfg.App.LogFile)
	log.Info().Str("mode", cfg.App.Mode).Str("server", cfg.Adapter.HTTPAddress).Msg("received configs")

	app, err := client.NewApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
