package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
)

type questionPostRepo struct {
	db dbConn
}

func newQuestionPostRepo(db dbConn) contract.QuestionPostRepo {
	return &questionPostRepo{db: db}
}

// Claim relies on the primary key on date: the insert either happens here or
// was already done by a concurrent attempt, decided by sqlite in one
// statement. RowsAffected tells us which.
func (r *questionPostRepo) Claim(date string, postedAt time.Time, channelID string) (bool, error) {
	query := `
		INSERT INTO daily_question_posts (date, posted_at, channel_id)
		VALUES (?, ?, ?)
		ON CONFLICT (date) DO NOTHING
	`

	result, err := r.db.Exec(query, date, postedAt, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to claim post date: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected == 1, nil
}

func (r *questionPostRepo) Finalize(date, messageID, threadID, channelID string, postedAt time.Time) error {
	query := `
		UPDATE daily_question_posts
		SET message_id = ?, thread_id = ?, channel_id = ?, posted_at = ?
		WHERE date = ?
	`

	var thread sql.NullString
	if threadID != "" {
		thread = sql.NullString{String: threadID, Valid: true}
	}

	_, err := r.db.Exec(query, messageID, thread, channelID, postedAt, date)
	if err != nil {
		return fmt.Errorf("failed to finalize post record: %w", err)
	}

	return nil
}

func (r *questionPostRepo) Exists(date string) (bool, error) {
	query := `SELECT 1 FROM daily_question_posts WHERE date = ?`

	var one int
	err := r.db.QueryRow(query, date).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}

	return true, nil
}

func (r *questionPostRepo) Latest() (*entity.QuestionPost, error) {
	query := `
		SELECT date, posted_at, channel_id, message_id, thread_id
		FROM daily_question_posts
		ORDER BY date DESC
		LIMIT 1
	`

	post := &entity.QuestionPost{}
	var messageID, threadID sql.NullString

	err := r.db.QueryRow(query).Scan(
		&post.Date,
		&post.PostedAt,
		&post.ChannelID,
		&messageID,
		&threadID,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest post: %w", err)
	}

	post.MessageID = messageID.String
	post.ThreadID = threadID.String

	return post, nil
}

// DeleteIfUnsent only touches rows whose message never went out, so a row
// completed by another successful attempt can never be removed here.
func (r *questionPostRepo) DeleteIfUnsent(date, channelID string) error {
	query := `
		DELETE FROM daily_question_posts
		WHERE date = ? AND message_id IS NULL AND channel_id = ?
	`

	_, err := r.db.Exec(query, date, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete unsent post record: %w", err)
	}

	return nil
}
