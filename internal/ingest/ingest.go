// Package ingest normalizes captured Twitch GraphQL responses into the database.
//
// A payload is searched for the campaign shapes it knows about, each campaign tree is then
// upserted parent first (owner, game, campaign, drops, benefits) inside a single transaction.
// Every upsert is keyed by the twitch id so ingesting the same payload twice is a no-op.
package ingest

import (
	"context"

	"ttvdrops/internal/assert"
	"ttvdrops/internal/chrono"
	"ttvdrops/internal/db"
	"ttvdrops/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("internal/ingest")

const (
	report_db_query       = "db.query"
	report_wrong_typename = "ingest.wrong-typename"
	report_missing_id     = "ingest.missing-id"
	report_unimplemented  = "ingest.unimplemented"
	report_payload_shape  = "ingest.payload-shape"
	report_archive        = "ingest.archive"
)

// Notifier is told about drop campaigns the first time they are stored.
// It is called after the transaction commits and must not fail ingestion.
type Notifier interface {
	DropCampaignCreated(ctx context.Context, campaign db.DropCampaign)
}

type noopNotifier struct{}

func (noopNotifier) DropCampaignCreated(context.Context, db.DropCampaign) {}

type Ingester struct {
	makeTx   db.MakeTx
	time     chrono.TimeAPI
	tel      telemetry.API
	notifier Notifier
	archiver *Archiver
}

func NewIngester(makeTx db.MakeTx, clock chrono.TimeAPI, tel telemetry.API) Ingester {
	assert.NotNil(makeTx)
	assert.NotNil(clock)
	assert.NotNil(tel)
	return Ingester{
		makeTx:   makeTx,
		time:     clock,
		tel:      tel,
		notifier: noopNotifier{},
	}
}

func (i Ingester) WithNotifier(notifier Notifier) Ingester {
	assert.NotNil(notifier)
	i.notifier = notifier
	return i
}

// WithArchiver makes the ingester save every live payload it recognizes.
func (i Ingester) WithArchiver(archiver Archiver) Ingester {
	i.archiver = &archiver
	return i
}

// Summary counts the campaigns a call went through.
type Summary struct {
	DropCampaigns   int `json:"drop_campaigns"`
	RewardCampaigns int `json:"reward_campaigns"`
	// campaigns and payloads that were rejected
	Skipped int `json:"skipped"`
}

func (s *Summary) Add(other Summary) {
	s.DropCampaigns += other.DropCampaigns
	s.RewardCampaigns += other.RewardCampaigns
	s.Skipped += other.Skipped
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// inTx runs fn inside a transaction, fn returning false discards the transaction.
func (i Ingester) inTx(ctx context.Context, fn func(u Upserter, tx *db.Queries) (bool, error)) (bool, error) {
	tx, discard, commit, err := i.makeTx(ctx)
	if err != nil {
		i.tel.ReportBroken(report_db_query, err)
		return false, err
	}
	defer discard()

	keep, err := fn(NewUpserter(tx, i.time, i.tel), tx)
	if err != nil || !keep {
		return false, err
	}
	err = commit()
	if err != nil {
		i.tel.ReportBroken(report_db_query, err)
		return false, err
	}
	return true, nil
}
