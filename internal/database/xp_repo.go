package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
)

type xpRepo struct {
	db dbConn
}

func newXPRepo(db dbConn) contract.XPRepo {
	return &xpRepo{db: db}
}

func (r *xpRepo) Get(userID string) (int64, error) {
	query := `SELECT xp FROM user_xp WHERE user_id = ?`

	var xp int64
	err := r.db.QueryRow(query, userID).Scan(&xp)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get xp: %w", err)
	}

	return xp, nil
}

func (r *xpRepo) Set(userID string, xp int64) error {
	query := `
		INSERT INTO user_xp (user_id, xp, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET xp = excluded.xp, updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, userID, xp, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set xp: %w", err)
	}

	return nil
}

func (r *xpRepo) Leaderboard(limit int) ([]*entity.UserXP, error) {
	query := `
		SELECT user_id, xp, updated_at
		FROM user_xp
		ORDER BY xp DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var users []*entity.UserXP
	for rows.Next() {
		user := &entity.UserXP{}
		if err := rows.Scan(&user.UserID, &user.XP, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan xp row: %w", err)
		}
		users = append(users, user)
	}

	return users, nil
}
