package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one housekeeping task. It returns how many entries it removed.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// Housekeeper runs the periodic sweeps of the in-memory defense state (rate
// limit windows, captcha challenges, daily AI counters, duplicate keys).
type Housekeeper struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.Mutex
	jobs []Job
	ctx  context.Context
}

func NewHousekeeper(logger *slog.Logger) *Housekeeper {
	return &Housekeeper{
		cron:   cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Every schedules job at a fixed interval.
func (h *Housekeeper) Every(interval time.Duration, job Job) error {
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		return fmt.Errorf("interval must be at least one second, got %s", interval)
	}
	return h.add(fmt.Sprintf("@every %ds", seconds), job)
}

// Daily schedules job at HH:MM UTC.
func (h *Housekeeper) Daily(hour, minute int, job Job) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}
	// cron format: second minute hour dom month dow
	return h.add(fmt.Sprintf("0 %d %d * * *", minute, hour), job)
}

func (h *Housekeeper) add(spec string, job Job) error {
	if _, err := h.cron.AddFunc(spec, func() { h.run(h.context(), job) }); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}

	h.mu.Lock()
	h.jobs = append(h.jobs, job)
	h.mu.Unlock()
	return nil
}

// Start runs the schedule until ctx is done.
func (h *Housekeeper) Start(ctx context.Context) {
	h.mu.Lock()
	h.ctx = ctx
	n := len(h.jobs)
	h.mu.Unlock()

	h.logger.Info("housekeeper started", "jobs", n)
	h.cron.Start()

	<-ctx.Done()

	stopped := h.cron.Stop()
	<-stopped.Done()
	h.logger.Info("housekeeper stopped")
}

// RunAll runs every registered job once, in registration order.
func (h *Housekeeper) RunAll(ctx context.Context) {
	h.mu.Lock()
	jobs := append([]Job(nil), h.jobs...)
	h.mu.Unlock()

	for _, job := range jobs {
		h.run(ctx, job)
	}
}

func (h *Housekeeper) context() context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctx
}

func (h *Housekeeper) run(ctx context.Context, job Job) {
	removed, err := job.Run(ctx)
	if err != nil {
		h.logger.Error("housekeeping job failed", "job", job.Name, "error", err)
		return
	}
	if removed > 0 {
		h.logger.Debug("housekeeping job done", "job", job.Name, "removed", removed)
	}
}

// SweepJob adapts the in-memory stores, whose Sweep cannot fail.
func SweepJob(name string, sweep func() int) Job {
	return Job{
		Name: name,
		Run: func(context.Context) (int, error) {
			return sweep(), nil
		},
	}
}
