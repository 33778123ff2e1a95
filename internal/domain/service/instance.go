package service

import (
	"github.com/rs/zerolog"

	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/schedule"
)

type Instance struct {
	Daily  *dailyService
	XP     *xpService
	Poller *poller
}

func NewInstance(dm contract.DataManager, slackClient contract.SlackClient, source contract.QuestionSource, resolver *schedule.Resolver, log zerolog.Logger) *Instance {
	daily := newDaily(dm, slackClient, source, resolver, log)

	return &Instance{
		Daily:  daily,
		XP:     newXP(dm, log),
		Poller: newPoller(daily, log),
	}
}
