package service

import (
	"context"
	"fmt"

	"github.com/hardhat-systems/siteledger/internal/application/port"
)

// Step is one unit of work inside an atomic ledger commit: a record insert,
// an aggregate delta, a status update, or an audit write. Steps run in order;
// later steps may depend on identifiers produced by earlier ones.
type Step struct {
	Name string

	// NonCritical steps (audit writes) log their failure and let the commit
	// proceed instead of aborting it.
	NonCritical bool

	Run func(ctx context.Context) error
}

// Coordinator executes an ordered step list under one transactional context.
// Callers observe either the full effect of a commit or none of it: the first
// critical step failure rolls back everything already done in the same call.
type Coordinator struct {
	txManager port.TransactionManager
	logger    Logger
}

// NewCoordinator creates a new commit coordinator
func NewCoordinator(txManager port.TransactionManager, logger Logger) *Coordinator {
	return &Coordinator{
		txManager: txManager,
		logger:    logger,
	}
}

// Commit runs all steps inside a single transaction
func (c *Coordinator) Commit(ctx context.Context, steps []Step) error {
	return c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, step := range steps {
			if err := step.Run(txCtx); err != nil {
				if step.NonCritical {
					c.logger.Warn("Non-critical commit step failed",
						"step", step.Name, "error", err)
					continue
				}
				c.logger.Error("Commit step failed, aborting transaction",
					"step", step.Name, "error", err)
				return fmt.Errorf("commit step %s: %w", step.Name, err)
			}
		}
		return nil
	})
}
