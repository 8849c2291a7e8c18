package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/hauntpass/backend/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Interval() time.Duration
}

// CronJobManager runs every registered job on its interval. A run which lasts
// longer than the interval delays the next one instead of overlapping it.
type CronJobManager struct {
	jobs []CronJob
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{}
}

func (m *CronJobManager) Register(job CronJob) {
	m.jobs = append(m.jobs, job)
}

// Start blocks until ctx is done.
func (m *CronJobManager) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	for _, job := range m.jobs {
		options := []gocron.JobOption{
			gocron.WithName(jobName(job)),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}

		if job.RunNow() {
			options = append(options, gocron.WithStartAt(gocron.WithStartImmediately()))
		}

		_, err := scheduler.NewJob(
			gocron.DurationJob(job.Interval()),
			gocron.NewTask(m.run, ctx, job),
			options...,
		)
		if err != nil {
			return err
		}
	}

	xcontext.Logger(ctx).Infof("Cron job manager started")
	scheduler.Start()

	<-ctx.Done()
	if err := scheduler.Shutdown(); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot shutdown scheduler: %v", err)
	}

	xcontext.Logger(ctx).Infof("Cron job manager stopped")
	return nil
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Infof("%s is running...", jobName(job))
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%s ok", jobName(job))
}

func jobName(job CronJob) string {
	return fmt.Sprintf("%T", job)
}
