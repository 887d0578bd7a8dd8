package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	sweeper *IdleSweeper
	logger  *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(sweeper *IdleSweeper, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
	}
}

// SetupJobs registers the idle drop-off sweep on schedule (standard cron
// expression or @every descriptor)
func (cm *CronManager) SetupJobs(schedule string) error {
	cm.logger.Println("Setting up cron jobs...")

	_, err := cm.cron.AddFunc(schedule, cm.runSweep)
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Printf("  - %s: Mark idle sessions as dropped off", schedule)

	return nil
}

func (cm *CronManager) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	marked, err := cm.sweeper.Sweep(ctx)
	if err != nil {
		cm.logger.Printf("❌ Failed to sweep idle sessions: %v", err)
		return
	}
	if marked > 0 {
		cm.logger.Printf("✅ Marked %d idle sessions as dropped off", marked)
	}
}

// Entries returns the number of registered jobs
func (cm *CronManager) Entries() int {
	return len(cm.cron.Entries())
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler and returns a context that is done once
// running jobs have finished
func (cm *CronManager) Stop() context.Context {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	return cm.cron.Stop()
}
