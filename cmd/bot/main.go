package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"

	"github.com/diegoclair/slack-qotd-bot/internal/config"
	"github.com/diegoclair/slack-qotd-bot/internal/database"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/schedule"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/service"
	"github.com/diegoclair/slack-qotd-bot/internal/gsheets"
	"github.com/diegoclair/slack-qotd-bot/internal/handlers"
	"github.com/diegoclair/slack-qotd-bot/internal/logger"
	"github.com/diegoclair/slack-qotd-bot/migrator/sqlite"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("running migrations")
	if err := sqlite.Migrate(db.DB()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	resolver, err := schedule.NewResolver(schedule.Config{
		Hour:      cfg.Daily.Hour,
		Minute:    cfg.Daily.Minute,
		Timezone:  cfg.Daily.Timezone,
		ChannelID: cfg.Daily.ChannelID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid posting schedule")
	}

	source, err := gsheets.New(context.Background(),
		cfg.Google.CredentialsPath,
		cfg.Google.SheetID,
		cfg.Google.SheetRange,
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize question source")
	}

	slackClient := slack.New(cfg.SlackBotToken)
	services := service.NewInstance(database.NewInstance(db), slackClient, source, resolver, log)

	if err := services.Poller.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start poller")
	}
	defer services.Poller.Stop()

	handler := handlers.New(slackClient, services, cfg, log)

	http.HandleFunc("/slack/commands", handler.HandleSlashCommand)
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
