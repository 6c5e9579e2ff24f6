// workers/scheduler.go
package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Job is a periodic background task.
type Job struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool
	Run            func(ctx context.Context)
}

// StartScheduler runs jobs on a gocron scheduler until ctx is done. A job
// never overlaps with itself; a slow run pushes the next one back.
func StartScheduler(ctx context.Context, jobs ...Job) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	for _, j := range jobs {
		j := j
		opts := []gocron.JobOption{
			gocron.WithName(j.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		}
		if j.RunImmediately {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}
		if _, err := sched.NewJob(
			gocron.DurationJob(j.Interval),
			gocron.NewTask(func() { j.Run(ctx) }),
			opts...,
		); err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("failed to schedule %s: %w", j.Name, err)
		}
		log.Printf("[Scheduler] %s every %s", j.Name, j.Interval)
	}

	sched.Start()

	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[Scheduler] Shutdown error: %v", err)
		}
	}()
	return sched, nil
}
