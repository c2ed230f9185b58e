package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"ttvdrops/internal/chrono"
	"ttvdrops/internal/db"
	"ttvdrops/internal/telemetry"
)

type ServiceParams struct {
	Name string
	// if unspecified, it will use `:memory:`
	DbPath string
	// if unspecified, the clock is frozen at 2024-08-01 00:00 UTC
	Now time.Time
}

type ServiceResult struct {
	DB     *sql.DB
	Tel    *telemetry.Recorder
	Time   *chrono.FixedTime
	Scoped telemetry.ScopedAPI
}

// SetupService opens a sqlite database with the schema applied, a frozen clock and a recording
// telemetry api. Everything is closed when the test ends.
func SetupService(t testing.TB, params ServiceParams) ServiceResult {
	t.Helper()
	telemetry.InitSlog(testing.Verbose())

	dbpath := ":memory:"
	if params.DbPath != "" {
		dbpath = params.DbPath
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	database, err := db.Open(ctx, db.Config{File: dbpath})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		database.Close()
	})

	now := params.Now
	if now.IsZero() {
		now = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	recorder := &telemetry.Recorder{Inner: telemetry.SlogAPI{}}

	return ServiceResult{
		DB:     database,
		Tel:    recorder,
		Time:   &chrono.FixedTime{At: now},
		Scoped: telemetry.NewScopedAPI(fmt.Sprintf("test:%s", params.Name), recorder),
	}
}
