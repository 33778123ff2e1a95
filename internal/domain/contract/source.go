package contract

import (
	"context"

	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
)

// QuestionSource fetches the question scheduled for a given day key. It is a
// read-only lookup and safe to call repeatedly; (nil, nil) means no question
// is scheduled for that day.
type QuestionSource interface {
	FetchQuestion(ctx context.Context, date string) (*entity.Question, error)
}
