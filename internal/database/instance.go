package database

import (
	"context"
	"fmt"

	"github.com/diegoclair/slack-qotd-bot/internal/domain/contract"
)

// instance implements DataManager interface
type instance struct {
	db       *DB
	postRepo contract.QuestionPostRepo
	xpRepo   contract.XPRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	i := &instance{
		db: db,
	}
	i.postRepo = newQuestionPostRepo(i.db.conn)
	i.xpRepo = newXPRepo(i.db.conn)
	return i
}

// repoInstancesWithConn creates repository instances with custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		postRepo: newQuestionPostRepo(db),
		xpRepo:   newXPRepo(db),
	}
}

// QuestionPost returns the delivery ledger repository
func (i *instance) QuestionPost() contract.QuestionPostRepo {
	return i.postRepo
}

// XP returns the XP repository
func (i *instance) XP() contract.XPRepo {
	return i.xpRepo
}

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
