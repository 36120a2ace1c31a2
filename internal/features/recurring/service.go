package recurring

import (
	"context"
	"time"

	"go-expense/internal/features/expense"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler resubmits due recurring expenses once a day. Each due template
// goes through the regular submission pipeline, so the workflow and rules
// in force at resubmission time apply.
type Scheduler struct {
	cron     *cron.Cron
	expenses expense.ExpenseService
	repo     expense.ExpenseRepository
	logger   *zap.Logger
}

func NewScheduler(lc fx.Lifecycle, expenses expense.ExpenseService, repo expense.ExpenseRepository, logger *zap.Logger) *Scheduler {
	s := &Scheduler{
		cron:     cron.New(),
		expenses: expenses,
		repo:     repo,
		logger:   logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, err := s.cron.AddFunc("0 6 * * *", s.Run); err != nil {
				return err
			}
			s.cron.Start()
			logger.Info("recurring expense scheduler started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopCtx := s.cron.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})

	return s
}

// Run processes every due recurring expense. Exposed so the seed tool and
// tests can trigger a cycle without waiting for the cron schedule.
func (s *Scheduler) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	due, err := s.repo.ListRecurringDue(ctx, time.Now())
	if err != nil {
		s.logger.Error("failed to list due recurring expenses", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	var failed int
	for i := range due {
		if err := s.expenses.ResubmitRecurring(ctx, &due[i]); err != nil {
			failed++
			s.logger.Error("recurring resubmission failed",
				zap.String("expense_id", due[i].ID.Hex()),
				zap.Error(err))
		}
	}
	s.logger.Info("recurring expense cycle finished",
		zap.Int("due", len(due)),
		zap.Int("failed", failed))
}
