// Package schedule runs reconciliations on a cron schedule. A run that is
// still going when the next one is due causes that tick to be skipped.
package schedule

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/agentstation/stockmap/pkg/errors"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner bound to a context.
type Scheduler struct {
	cron   *cron.Cron
	logger *zerolog.Logger
	ctx    context.Context
}

// New creates a Scheduler that logs through logger.
func New(logger *zerolog.Logger) *Scheduler {
	l := Logger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Add schedules job under a standard five-field spec or a descriptor such
// as "@daily" or "@every 2h".
func (s *Scheduler) Add(spec, name string, job Job) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return errors.NewValidationError("schedule", spec, err.Error())
	}
	s.AddSchedule(sched, name, job)
	return nil
}

// AddSchedule schedules job on an arbitrary cron.Schedule.
func (s *Scheduler) AddSchedule(sched cron.Schedule, name string, job Job) {
	s.cron.Schedule(sched, cron.FuncJob(func() {
		logger := s.logger.With().Str("job", name).Logger()
		logger.Info().Msg("Scheduled run starting")
		if err := job(s.ctx); err != nil {
			logger.Error().Err(err).Msg("Scheduled run failed")
			return
		}
		logger.Info().Msg("Scheduled run finished")
	}))
}

// Run starts the scheduler and blocks until ctx is done. It then waits for
// the running job, if any, to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// Logger adapts zerolog to cron.Logger.
type Logger struct {
	logger *zerolog.Logger
}

var _ cron.Logger = Logger{}

// Info logs routine scheduler messages at debug level.
func (l Logger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Error logs scheduler errors.
func (l Logger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
