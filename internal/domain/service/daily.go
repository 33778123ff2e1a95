package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/diegoclair/slack-qotd-bot/internal/domain"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/schedule"
)

// Skip conditions: neither is a failure, both mean "nothing to deliver now".
var (
	// ErrAlreadyPosted means the day key is already claimed or delivered.
	ErrAlreadyPosted = errors.New("question already posted for this day")

	// ErrNoQuestion means the sheet has no row for the day key.
	ErrNoQuestion = errors.New("no question scheduled for this day")
)

// Status is the read-only scheduler introspection returned to operators.
type Status struct {
	Now      time.Time
	DayKey   string
	Timezone string
	PostAt   time.Time
	NextAt   time.Time
	Latest   *entity.QuestionPost
}

type dailyService struct {
	dm          contract.DataManager
	slackClient contract.SlackClient
	source      contract.QuestionSource
	resolver    *schedule.Resolver
	log         zerolog.Logger
	now         func() time.Time
}

func newDaily(dm contract.DataManager, slackClient contract.SlackClient, source contract.QuestionSource, resolver *schedule.Resolver, log zerolog.Logger) *dailyService {
	return &dailyService{
		dm:          dm,
		slackClient: slackClient,
		source:      source,
		resolver:    resolver,
		log:         log,
		now:         time.Now,
	}
}

// PostIfDue is the poll-tick body: no-op before today's post time or when a
// ledger row already exists, otherwise run the delivery pipeline. After a
// restart the first due tick finds no row and retries delivery; the ledger's
// claim keeps an earlier successful attempt from being duplicated.
func (s *dailyService) PostIfDue(ctx context.Context) error {
	sc := s.resolver.Context(s.now())
	if sc.Now.Before(sc.PostAt) {
		return nil
	}

	exists, err := s.dm.QuestionPost().Exists(sc.DayKey)
	if err != nil {
		return fmt.Errorf("failed to check ledger: %w", err)
	}
	if exists {
		return nil
	}

	err = s.Post(ctx, sc.DayKey, sc.Now)
	if errors.Is(err, ErrAlreadyPosted) || errors.Is(err, ErrNoQuestion) {
		return nil
	}
	return err
}

// PostNow is the manual trigger. The Exists pre-check is advisory, for fast
// operator feedback; the claim inside Post remains the correctness boundary.
func (s *dailyService) PostNow(ctx context.Context) error {
	sc := s.resolver.Context(s.now())

	exists, err := s.dm.QuestionPost().Exists(sc.DayKey)
	if err != nil {
		return fmt.Errorf("failed to check ledger: %w", err)
	}
	if exists {
		return ErrAlreadyPosted
	}

	return s.Post(ctx, sc.DayKey, sc.Now)
}

// Post runs the delivery pipeline for one day key:
// fetch -> render -> claim -> publish -> thread -> record.
// Fetch and render abort with no side effects. A lost claim aborts without
// sending. A failed send deletes the still-unsent claim so a later tick can
// retry. Thread creation is best-effort. Record failure is irreversible and
// only reported.
func (s *dailyService) Post(ctx context.Context, dayKey string, postedAt time.Time) error {
	channelID := s.resolver.Config().ChannelID
	log := s.log.With().Str("date", dayKey).Str("channel_id", channelID).Logger()

	question, err := s.source.FetchQuestion(ctx, dayKey)
	if err != nil {
		log.Error().Err(err).Msg("daily question fetch stage failed")
		return fmt.Errorf("fetch stage: %w", err)
	}
	if question == nil {
		log.Warn().Msg("no daily question found, skipping")
		return ErrNoQuestion
	}

	log = log.With().Str("question_number", question.Number).Logger()
	message := renderQuestion(question, postedAt)

	claimed, err := s.dm.QuestionPost().Claim(dayKey, postedAt, channelID)
	if err != nil {
		log.Error().Err(err).Msg("daily question claim stage failed")
		return fmt.Errorf("claim stage: %w", err)
	}
	if !claimed {
		log.Info().Msg("daily question already claimed for posting")
		return ErrAlreadyPosted
	}

	_, messageID, err := s.slackClient.PostMessage(channelID, message...)
	if err != nil {
		log.Error().Err(err).Msg("daily question send stage failed")
		if cleanupErr := s.dm.QuestionPost().DeleteIfUnsent(dayKey, channelID); cleanupErr != nil {
			log.Error().Err(cleanupErr).Msg("failed to clean up unsent claim")
		}
		return fmt.Errorf("send stage: %w", err)
	}

	threadID := s.openThread(log, channelID, messageID, question.Number)

	if err := s.dm.QuestionPost().Finalize(dayKey, messageID, threadID, channelID, postedAt); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("daily question record stage failed")
		return fmt.Errorf("record stage: %w", err)
	}

	log.Info().Str("message_id", messageID).Str("thread_id", threadID).Msg("posted daily question")
	return nil
}

// openThread seeds the discussion thread under the question message and
// returns the reply timestamp, or "" when thread creation failed. The
// question stays posted either way.
func (s *dailyService) openThread(log zerolog.Logger, channelID, messageID, questionNumber string) string {
	_, threadID, err := s.slackClient.PostMessage(channelID,
		slack.MsgOptionTS(messageID),
		slack.MsgOptionText(fmt.Sprintf("Discussion: Question #%s", questionNumber), false),
	)
	if err != nil {
		log.Warn().Err(err).Str("message_id", messageID).Msg("daily question thread stage failed, message kept")
		return ""
	}
	return threadID
}

// Status computes the current schedule context and the latest ledger row,
// with no side effects.
func (s *dailyService) Status() (*Status, error) {
	sc := s.resolver.Context(s.now())

	latest, err := s.dm.QuestionPost().Latest()
	if err != nil {
		return nil, fmt.Errorf("failed to get latest post: %w", err)
	}

	return &Status{
		Now:      sc.Now,
		DayKey:   sc.DayKey,
		Timezone: s.resolver.Config().Timezone,
		PostAt:   sc.PostAt,
		NextAt:   s.resolver.Next(sc.Now),
		Latest:   latest,
	}, nil
}

func renderQuestion(q *entity.Question, postedAt time.Time) []slack.MsgOption {
	color, ok := domain.DifficultyColors[q.Difficulty]
	if !ok {
		color = domain.DefaultColor
	}

	fields := []slack.AttachmentField{
		{Title: "Genre", Value: q.Genre, Short: true},
		{Title: "Difficulty", Value: q.Difficulty, Short: true},
		{Title: "Curator", Value: q.Curator, Short: true},
	}
	if len(q.Hints) > 0 {
		fields = append(fields, slack.AttachmentField{
			Title: "Hints",
			Value: strings.Join(q.Hints, "\n"),
		})
	}

	attachment := slack.Attachment{
		Color:  color,
		Title:  fmt.Sprintf("Daily Physics Question #%s", q.Number),
		Text:   q.Statement,
		Fields: fields,
		Footer: "Physics Club Daily Challenge",
		Ts:     json.Number(strconv.FormatInt(postedAt.Unix(), 10)),
	}

	return []slack.MsgOption{slack.MsgOptionAttachments(attachment)}
}
