package schedule

import (
	"fmt"
	"time"

	"github.com/diegoclair/slack-qotd-bot/internal/domain"
)

// Config is the immutable posting schedule: a local wall-clock time in an
// IANA zone, plus the destination channel.
type Config struct {
	Hour      int
	Minute    int
	Timezone  string
	ChannelID string
}

// Context is the schedule resolved against a single instant: the day key the
// instant falls on in the posting zone and that day's scheduled post time.
type Context struct {
	Now    time.Time
	DayKey string
	PostAt time.Time // today's scheduled instant, UTC
}

// Resolver answers schedule questions for a fixed Config. It holds the loaded
// time zone so an unresolvable zone fails at construction, not at poll time.
type Resolver struct {
	cfg Config
	loc *time.Location
}

func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Hour < 0 || cfg.Hour > 23 {
		return nil, fmt.Errorf("post hour out of range: %d", cfg.Hour)
	}
	if cfg.Minute < 0 || cfg.Minute > 59 {
		return nil, fmt.Errorf("post minute out of range: %d", cfg.Minute)
	}
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("daily channel id is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return &Resolver{cfg: cfg, loc: loc}, nil
}

// Context resolves now into the local day key and that day's post instant.
// The wall-clock target is rebuilt in the zone for that date, so daylight
// saving transitions neither skip nor duplicate a day.
func (r *Resolver) Context(now time.Time) Context {
	local := now.In(r.loc)
	postAt := time.Date(local.Year(), local.Month(), local.Day(), r.cfg.Hour, r.cfg.Minute, 0, 0, r.loc)

	return Context{
		Now:    now.UTC(),
		DayKey: local.Format(domain.DayKeyLayout),
		PostAt: postAt.UTC(),
	}
}

// IsDue reports whether the post time for now's local day has been reached.
func (r *Resolver) IsDue(now time.Time) bool {
	sc := r.Context(now)
	return !sc.Now.Before(sc.PostAt)
}

// Next returns the first scheduled instant strictly after now.
func (r *Resolver) Next(now time.Time) time.Time {
	sc := r.Context(now)
	if sc.PostAt.After(sc.Now) {
		return sc.PostAt
	}

	tomorrow := now.In(r.loc).AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), r.cfg.Hour, r.cfg.Minute, 0, 0, r.loc).UTC()
}

// Config returns the schedule configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}
