package jobs

import (
	"time"

	"probation_app_go/config"
	"probation_app_go/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	reminderSpec = "*/15 * * * *"
	cleanupSpec  = "@hourly"
)

// StartScheduler runs the reminder and session cleanup jobs in local time.
// Job failures are logged and never stop the server. Stop the returned cron
// on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.Local))

	if _, err := c.AddFunc(reminderSpec, func() {
		if _, err := SendAppointmentReminders(database, cfg, time.Now()); err != nil {
			zap.L().Error("appointment reminder job failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(cleanupSpec, func() {
		if _, err := CleanupSessions(database); err != nil {
			zap.L().Error("session cleanup job failed", zap.Error(err))
		}
		services.Monitor.Prune()
	}); err != nil {
		return nil, err
	}

	c.Start()
	zap.L().Info("job scheduler started", zap.String("reminders", reminderSpec), zap.String("cleanup", cleanupSpec))
	return c, nil
}
