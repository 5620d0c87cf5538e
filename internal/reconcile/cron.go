package reconcile

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the
// duration until the next fire time.
func nextCronDuration(expr string) (time.Duration, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0, fmt.Errorf("reconcile: parse schedule %q: %w", expr, err)
	}
	d := time.Until(sched.Next(time.Now()))
	if d < 0 {
		d = 0
	}
	return d, nil
}

// ValidateSchedule checks that expr parses as a 5-field cron expression.
// Callers that launch Run in a goroutine use this to reject a bad schedule
// before Run's error would be discarded.
func ValidateSchedule(expr string) error {
	_, err := nextCronDuration(expr)
	return err
}

// Run executes ReassignAll on the given cron schedule until ctx is
// cancelled. Failures are reported to out and the loop keeps going.
func Run(ctx context.Context, db *gorm.DB, schedule, fallbackKey string, out io.Writer) error {
	// Validate the expression up front so a bad config fails at startup.
	if err := ValidateSchedule(schedule); err != nil {
		return err
	}

	for {
		wait, err := nextCronDuration(schedule)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		n, err := ReassignAll(db, fallbackKey)
		if err != nil {
			if out != nil {
				fmt.Fprintf(out, "reconcile: %v\n", err)
			}
			continue
		}
		if out != nil && n > 0 {
			fmt.Fprintf(out, "reconcile: reassigned %d orphaned tasks to %q\n", n, fallbackKey)
		}
	}
}
