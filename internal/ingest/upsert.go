package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ttvdrops/internal/db"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/telemetry"
)

// Outcome is the result of upserting a single json object.
type Outcome[T any] struct {
	Record T
	// Found is false when nothing is stored under the id, this only happens when the
	// object was rejected before it could be created.
	Found bool
	// Skipped is true when the object was rejected and the stored row, if any, was left alone.
	Skipped bool
	// Created is true when this call inserted the row.
	Created bool
	// Changed counts the columns that were changed, parent references included.
	Changed int
}

// repository is the lookup, create and update triple for one table.
type repository[T any] struct {
	kind       string
	typename   string
	get        func(q *db.Queries, ctx context.Context, twitchID string) (T, error)
	create     func(q *db.Queries, ctx context.Context, arg db.CreateParams) error
	update     func(q *db.Queries, ctx context.Context, rec T) error
	modifiedAt func(rec *T) *time.Time
}

// rule is a change applied after the field table, ex. a parent reference.
type rule[T any] func(rec *T) bool

type upsertEnv struct {
	qry *db.Queries
	now time.Time
	tel telemetry.API
}

func (env upsertEnv) broken(repo string, err error, id string) error {
	env.tel.ReportBroken(report_db_query, err, telemetry.KV{Key: "entity", Value: repo}, telemetry.KV{Key: "twitch_id", Value: id})
	return fmt.Errorf("%s %s: %w", repo, id, err)
}

// upsert finds or creates the row keyed by the object's id and copies the field table onto it,
// the row is only written back when something changed.
func upsert[T any](ctx context.Context, env upsertEnv, repo repository[T], obj gqljson.Value, fields []field[T], rules ...rule[T]) (Outcome[T], error) {
	id := obj.ID()
	if id == "" {
		env.tel.ReportWarning(
			report_missing_id,
			telemetry.KV{Key: "entity", Value: repo.kind},
			telemetry.KV{Key: "keys", Value: obj.Keys()},
		)
		return Outcome[T]{Skipped: true}, nil
	}

	if got := obj.Typename(); got != repo.typename {
		env.tel.ReportWarning(
			report_wrong_typename,
			telemetry.KV{Key: "entity", Value: repo.kind},
			telemetry.KV{Key: "twitch_id", Value: id},
			telemetry.KV{Key: "expected", Value: repo.typename},
			telemetry.KV{Key: "got", Value: got},
		)
		existing, err := repo.get(env.qry, ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return Outcome[T]{Skipped: true}, nil
		}
		if err != nil {
			return Outcome[T]{}, env.broken(repo.kind, err, id)
		}
		return Outcome[T]{Record: existing, Found: true, Skipped: true}, nil
	}

	out := Outcome[T]{Found: true}
	rec, err := repo.get(env.qry, ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		err = repo.create(env.qry, ctx, db.CreateParams{TwitchID: id, CreatedAt: env.now})
		if err != nil {
			return Outcome[T]{}, env.broken(repo.kind, err, id)
		}
		// read back instead of trusting the insert, a concurrent writer may have won
		rec, err = repo.get(env.qry, ctx, id)
		out.Created = true
	}
	if err != nil {
		return Outcome[T]{}, env.broken(repo.kind, err, id)
	}

	dirty := applyFields(&rec, obj, fields)
	for _, r := range rules {
		if r(&rec) {
			dirty++
		}
	}

	if dirty > 0 {
		*repo.modifiedAt(&rec) = env.now
		err = repo.update(env.qry, ctx, rec)
		if err != nil {
			return Outcome[T]{}, env.broken(repo.kind, err, id)
		}
		env.tel.ReportDebug(
			fmt.Sprintf("updated %s", repo.kind),
			telemetry.KV{Key: "twitch_id", Value: id},
			telemetry.KV{Key: "changed", Value: dirty},
		)
	}

	out.Record = rec
	out.Changed = dirty
	return out, nil
}

func parentRule[T any](column func(*T) *sql.NullString, parentID string) rule[T] {
	return func(rec *T) bool {
		return setParent(column(rec), parentID)
	}
}
