// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule runs a job once a day at a configured time.
package schedule

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pdiddy/inbox-digest/pkg/types"
)

// DefaultCheckTime is used when the configured time does not parse.
const DefaultCheckTime = "12:00"

// Scheduler runs Job daily. A trigger that fires while the previous run is
// still going is skipped.
type Scheduler struct {
	Config types.ScheduleConfig
	Job    func(ctx context.Context) error
	Out    io.Writer
}

// ParseCheckTime parses "HH:MM" in 24-hour time.
func ParseCheckTime(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("check time %q is not HH:MM", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("check time %q has an invalid hour", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("check time %q has an invalid minute", s)
	}
	return hour, minute, nil
}

// Spec returns the cron expression and location for cfg. An invalid check
// time falls back to DefaultCheckTime with a warning on w.
func Spec(cfg types.ScheduleConfig, w io.Writer) (string, *time.Location, error) {
	hour, minute, err := ParseCheckTime(cfg.CheckTime)
	if err != nil {
		if w != nil {
			fmt.Fprintf(w, "warning: %v, using %s\n", err, DefaultCheckTime)
		}
		hour, minute, _ = ParseCheckTime(DefaultCheckTime)
	}

	loc, err := Location(cfg)
	if err != nil {
		return "", nil, err
	}

	days := "*"
	if cfg.WeekdaysOnly {
		days = "MON-FRI"
	}
	return fmt.Sprintf("%d %d * * %s", minute, hour, days), loc, nil
}

// Location returns the zone the schedule fires in: cfg.Timezone, or local
// time when it is empty.
func Location(cfg types.ScheduleConfig) (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}

// Next returns the first trigger time after from.
func Next(cfg types.ScheduleConfig, from time.Time) (time.Time, error) {
	spec, loc, err := Spec(cfg, nil)
	if err != nil {
		return time.Time{}, err
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing schedule: %w", err)
	}
	return sched.Next(from.In(loc)), nil
}

// Run schedules the job and blocks until ctx is cancelled. It waits for a
// run in progress before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	w := s.out()
	spec, loc, err := Spec(s.Config, w)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(loc), cron.WithLogger(s.logger()))
	if _, err := c.AddJob(spec, s.job(ctx)); err != nil {
		return fmt.Errorf("adding job: %w", err)
	}

	c.Start()
	if entries := c.Entries(); len(entries) > 0 {
		fmt.Fprintf(w, "scheduled: %q (%s), next run %s\n", spec, loc, entries[0].Next.Format(time.RFC3339))
	}

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// job wraps Job so overlapping triggers are skipped and errors are
// reported instead of stopping the scheduler.
func (s *Scheduler) job(ctx context.Context) cron.Job {
	w := s.out()
	run := cron.FuncJob(func() {
		start := time.Now()
		fmt.Fprintf(w, "run started: %s\n", start.Format(time.RFC3339))
		if err := s.Job(ctx); err != nil {
			fmt.Fprintf(w, "run failed: %v\n", err)
			return
		}
		fmt.Fprintf(w, "run finished in %s\n", time.Since(start).Round(time.Second))
	})
	return cron.NewChain(cron.Recover(s.logger()), cron.SkipIfStillRunning(s.logger())).Then(run)
}

func (s *Scheduler) logger() cron.Logger {
	return cron.PrintfLogger(log.New(s.out(), "cron: ", 0))
}

func (s *Scheduler) out() io.Writer {
	if s.Out == nil {
		return io.Discard
	}
	return s.Out
}
