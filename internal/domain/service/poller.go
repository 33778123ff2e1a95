package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// poller drives the due-check once per minute. The due-check itself is a pure
// function of time and configuration, so the ticker stays dumb: a failed
// pipeline run is logged and the next tick retries until the day rolls over.
type poller struct {
	cron  *cron.Cron
	daily *dailyService
	log   zerolog.Logger
}

func newPoller(daily *dailyService, log zerolog.Logger) *poller {
	return &poller{
		cron:  cron.New(),
		daily: daily,
		log:   log,
	}
}

func (p *poller) Start() error {
	if _, err := p.cron.AddFunc("* * * * *", p.tick); err != nil {
		return fmt.Errorf("failed to schedule poll tick: %w", err)
	}

	p.cron.Start()
	p.log.Info().Msg("daily question poller started")
	return nil
}

// Stop prevents future ticks. An in-flight delivery is not cancelled.
func (p *poller) Stop() {
	p.cron.Stop()
	p.log.Info().Msg("daily question poller stopped")
}

func (p *poller) tick() {
	if err := p.daily.PostIfDue(context.Background()); err != nil {
		p.log.Error().Err(err).Msg("daily question delivery attempt failed")
	}
}
