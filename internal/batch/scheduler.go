package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Job interface {
	Run(ctx context.Context) error
}

// Schedule registers job on c. Each run gets its own context bounded by timeout.
func Schedule(c *cron.Cron, name, spec string, timeout time.Duration, job Job, logger *slog.Logger) (cron.EntryID, error) {
	jobLogger := logger.With("job_name", name)

	id, err := c.AddJob(spec, cron.FuncJob(func() {
		jobLogger.Debug("Cron triggered: running job.")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if runErr := job.Run(ctx); runErr != nil {
			jobLogger.Error("Job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		return 0, fmt.Errorf("failed to schedule job %s with spec %q: %w", name, spec, err)
	}

	jobLogger.Info("Scheduled job", "schedule", spec, "job_id", id)
	return id, nil
}
