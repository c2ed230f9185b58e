package chrono

import (
	"fmt"
	"time"

	"ttvdrops/internal/telemetry"

	"github.com/robfig/cron/v3"
)

// CronAPI schedules recurring work.
type CronAPI interface {
	Cron(spec string, callback func()) error
}

// StandardCron runs jobs with robfig/cron in UTC. A job whose previous run is still going when
// its next tick arrives is skipped, panics are recovered and reported.
type StandardCron struct {
	cron *cron.Cron
}

func NewStandardCron(tel telemetry.API) StandardCron {
	logger := cronLogger{tel: tel}
	return StandardCron{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Cron accepts the standard five field syntax as well as descriptors like `@every 5m`.
func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}
	return nil
}

func (s StandardCron) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to return.
func (s StandardCron) Stop() {
	<-s.cron.Stop().Done()
}

// cronLogger adapts telemetry.API to cron.Logger.
type cronLogger struct {
	tel telemetry.API
}

func pairs(keysAndValues []any) []any {
	out := make([]any, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		out = append(out, telemetry.KV{Key: fmt.Sprint(keysAndValues[i]), Value: keysAndValues[i+1]})
	}
	return out
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug("cron "+msg, pairs(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	params := append([]any{fmt.Errorf("%s: %w", msg, err)}, pairs(keysAndValues)...)
	l.tel.ReportBroken("cron", params...)
}
