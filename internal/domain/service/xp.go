package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
	"github.com/diegoclair/slack-qotd-bot/internal/domain/entity"
)

type xpService struct {
	dm  contract.DataManager
	log zerolog.Logger
}

func newXP(dm contract.DataManager, log zerolog.Logger) *xpService {
	return &xpService{dm: dm, log: log}
}

// XP returns the user's current XP, zero for unknown users.
func (s *xpService) XP(userID string) (int64, error) {
	return s.dm.XP().Get(userID)
}

// Grant adds delta (positive or negative) to the user's XP inside a
// transaction, clamping the result at zero. Returns the new total.
func (s *xpService) Grant(ctx context.Context, userID string, delta int64) (int64, error) {
	var newXP int64

	err := s.dm.WithTransaction(ctx, func(dm contract.DataManager) error {
		current, err := dm.XP().Get(userID)
		if err != nil {
			return err
		}

		newXP = current + delta
		if newXP < 0 {
			newXP = 0
		}
		if newXP == current {
			return nil
		}

		return dm.XP().Set(userID, newXP)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to grant xp: %w", err)
	}

	s.log.Info().Str("user_id", userID).Int64("delta", delta).Int64("xp", newXP).Msg("adjusted xp")
	return newXP, nil
}

// Leaderboard returns the top users by XP.
func (s *xpService) Leaderboard(limit int) ([]*entity.UserXP, error) {
	return s.dm.XP().Leaderboard(limit)
}
