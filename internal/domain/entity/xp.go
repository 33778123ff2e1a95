package entity

import "time"

// UserXP is one row of the user_xp table.
type UserXP struct {
	UserID    string
	XP        int64
	UpdatedAt time.Time
}
