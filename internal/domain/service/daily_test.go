package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/diegoclair/slack-qotd-bot/internal/database"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/schedule"
	"github.com/diegoclair/slack-qotd-bot/mocks"
)

const testChannelID = "C123456789"

type dailyMocks struct {
	dm          contract.DataManager
	slackClient *mocks.MockSlackClient
	source      *mocks.MockQuestionSource
	daily       *dailyService
}

// newDailyTestMock wires the pipeline against a real in-memory ledger and
// mocked external collaborators, with the clock frozen at now.
func newDailyTestMock(t *testing.T, now time.Time) (m dailyMocks, ctrl *gomock.Controller) {
	t.Helper()

	ctrl = gomock.NewController(t)

	db := database.SetupTestDB(t)
	t.Cleanup(func() { database.CleanupTestDB(t, db) })

	resolver, err := schedule.NewResolver(schedule.Config{
		Hour:      9,
		Minute:    0,
		Timezone:  "UTC",
		ChannelID: testChannelID,
	})
	require.NoError(t, err)

	m = dailyMocks{
		dm:          database.NewInstance(db),
		slackClient: mocks.NewMockSlackClient(ctrl),
		source:      mocks.NewMockQuestionSource(ctrl),
	}

	m.daily = newDaily(m.dm, m.slackClient, m.source, resolver, zerolog.Nop())
	m.daily.now = func() time.Time { return now }

	return m, ctrl
}

func testQuestion() *entity.Question {
	return &entity.Question{
		Number:     "41",
		Statement:  "A block slides down a frictionless incline...",
		Genre:      "Mechanics",
		Difficulty: "Easy",
		Curator:    "Ada",
		Hints:      []string{"Draw a free-body diagram"},
	}
}

func TestDaily_Post_Success(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(testQuestion(), nil)
	gomock.InOrder(
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735722000.000100", nil),
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735722000.000200", nil),
	)

	err := m.daily.Post(context.Background(), "2025-01-01", now)
	require.NoError(t, err)

	latest, err := m.dm.QuestionPost().Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)

	assert.Equal(t, "2025-01-01", latest.Date)
	assert.Equal(t, "1735722000.000100", latest.MessageID)
	assert.Equal(t, "1735722000.000200", latest.ThreadID)
	assert.Equal(t, testChannelID, latest.ChannelID)
}

func TestDaily_Post_Idempotent(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(testQuestion(), nil).Times(2)
	// Exactly one send and one thread reply across both invocations.
	gomock.InOrder(
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735722000.000100", nil),
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735722000.000200", nil),
	)

	err := m.daily.Post(context.Background(), "2025-01-01", now)
	require.NoError(t, err)

	// The second invocation loses the claim and must not send.
	err = m.daily.Post(context.Background(), "2025-01-01", now)
	assert.ErrorIs(t, err, ErrAlreadyPosted)

	latest, err := m.dm.QuestionPost().Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "1735722000.000100", latest.MessageID)
}

func TestDaily_Post_NoQuestionDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(nil, nil)

	err := m.daily.Post(context.Background(), "2025-01-01", now)
	assert.ErrorIs(t, err, ErrNoQuestion)

	// No ledger row, so later ticks may retry.
	exists, err := m.dm.QuestionPost().Exists("2025-01-01")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDaily_Post_FetchFailure(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(nil, errors.New("sheet unavailable"))

	err := m.daily.Post(context.Background(), "2025-01-01", now)
	require.Error(t, err)

	exists, err := m.dm.QuestionPost().Exists("2025-01-01")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDaily_Post_SendFailureCleansClaim(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(testQuestion(), nil).Times(2)
	gomock.InOrder(
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return("", "", errors.New("slack is down")),
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735722000.000100", nil),
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735722000.000200", nil),
	)

	err := m.daily.Post(context.Background(), "2025-01-01", now)
	require.Error(t, err)

	// The failed send must not leave a stale claim behind.
	exists, err := m.dm.QuestionPost().Exists("2025-01-01")
	require.NoError(t, err)
	assert.False(t, exists, "Expected claim to be cleaned up after send failure")

	// A later tick can claim and deliver.
	err = m.daily.Post(context.Background(), "2025-01-01", now.Add(time.Minute))
	require.NoError(t, err)

	latest, err := m.dm.QuestionPost().Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.Sent())
}

func TestDaily_Post_ThreadFailureKeepsDelivery(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(testQuestion(), nil)
	gomock.InOrder(
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735722000.000100", nil),
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return("", "", errors.New("threads disabled")),
	)

	err := m.daily.Post(context.Background(), "2025-01-01", now)
	require.NoError(t, err, "Thread failure must not fail the delivery")

	latest, err := m.dm.QuestionPost().Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)

	assert.Equal(t, "1735722000.000100", latest.MessageID)
	assert.Empty(t, latest.ThreadID)
}

func TestDaily_PostIfDue_BeforePostTime(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 59, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	// No source or slack calls expected.
	err := m.daily.PostIfDue(context.Background())
	require.NoError(t, err)
}

func TestDaily_PostIfDue_AlreadyPosted(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 5, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	_, err := m.dm.QuestionPost().Claim("2025-01-01", now.Add(-5*time.Minute), testChannelID)
	require.NoError(t, err)

	// Ledger row present: no pipeline invocation at all.
	err = m.daily.PostIfDue(context.Background())
	require.NoError(t, err)
}

func TestDaily_PostIfDue_LateTick(t *testing.T) {
	// Tick arrives 17 minutes after the scheduled time (e.g. after a restart).
	now := time.Date(2025, 1, 1, 9, 17, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(testQuestion(), nil)
	gomock.InOrder(
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735723020.000100", nil),
		m.slackClient.EXPECT().PostMessage(testChannelID, gomock.Any()).Return(testChannelID, "1735723020.000200", nil),
	)

	err := m.daily.PostIfDue(context.Background())
	require.NoError(t, err)

	latest, err := m.dm.QuestionPost().Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)

	// posted_at records the late tick, not the originally scheduled instant.
	assert.Equal(t, now.Unix(), latest.PostedAt.Unix())
}

func TestDaily_PostIfDue_NoQuestionIsNotAnError(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	m.source.EXPECT().FetchQuestion(gomock.Any(), "2025-01-01").Return(nil, nil)

	err := m.daily.PostIfDue(context.Background())
	require.NoError(t, err, "A no-question day is a skip, not a poller error")
}

func TestDaily_PostNow_AlreadyPosted(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	_, err := m.dm.QuestionPost().Claim("2025-01-01", now, testChannelID)
	require.NoError(t, err)

	err = m.daily.PostNow(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyPosted)
}

func TestDaily_Status(t *testing.T) {
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m, ctrl := newDailyTestMock(t, now)
	defer ctrl.Finish()

	status, err := m.daily.Status()
	require.NoError(t, err)

	assert.Equal(t, "2025-01-01", status.DayKey)
	assert.Equal(t, "UTC", status.Timezone)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), status.PostAt)
	assert.Equal(t, time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC), status.NextAt)
	assert.Nil(t, status.Latest, "Expected no delivery recorded yet")
}
