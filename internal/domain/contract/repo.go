package contract

import (
	"context"
	"time"

	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	QuestionPost() QuestionPostRepo
	XP() XPRepo
}

// QuestionPostRepo is the delivery ledger for daily questions. Claim is the
// serialization point between concurrent delivery attempts: it must be a
// single atomic statement at the storage layer, never check-then-insert.
type QuestionPostRepo interface {
	// Claim inserts the row for date if absent and reports whether this call
	// performed the insert.
	Claim(date string, postedAt time.Time, channelID string) (bool, error)

	// Finalize records the delivered message identity on the claimed row.
	Finalize(date, messageID, threadID, channelID string, postedAt time.Time) error

	// Exists reports whether any row (claimed or delivered) exists for date.
	Exists(date string) (bool, error)

	// Latest returns the most recent row by date, or nil when none exist.
	Latest() (*entity.QuestionPost, error)

	// DeleteIfUnsent removes the row for date only while its message_id is
	// still null, as compensation for a failed send after a claim.
	DeleteIfUnsent(date, channelID string) error
}

// XPRepo defines the contract for the per-user XP ledger
type XPRepo interface {
	Get(userID string) (int64, error)
	Set(userID string, xp int64) error
	Leaderboard(limit int) ([]*entity.UserXP, error)
}
