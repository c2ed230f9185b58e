// Package notify tells subscribed webhooks about newly discovered drop campaigns.
package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"time"

	"ttvdrops/internal/assert"
	"ttvdrops/internal/db"
	"ttvdrops/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("internal/notify")

const (
	report_db_query     = "db.query"
	report_send         = "notify.send"
	report_unknown_kind = "notify.unknown-kind"
)

// Message is one notification, Content carries discord markup while Text is the plain rendering.
type Message struct {
	Username string
	Title    string
	Content  string
	Text     string
}

// Sink delivers a message to a single webhook target.
type Sink interface {
	Send(ctx context.Context, target string, msg Message) error
}

func orDefault(value sql.NullString, fallback string) string {
	if !value.Valid || value.String == "" {
		return fallback
	}
	return value.String
}

func discordTimestamp(t sql.NullTime) string {
	if !t.Valid {
		return "Unknown"
	}
	return fmt.Sprintf("<t:%d:R>", t.Time.Unix())
}

func plainTimestamp(t sql.NullTime) string {
	if !t.Valid {
		return "Unknown"
	}
	return t.Time.UTC().Format(time.RFC1123)
}

// NewMessage renders the announcement of a campaign, subject is the name of the game or the
// organization the subscriber follows.
func NewMessage(subject string, campaign db.DropCampaign) Message {
	title := fmt.Sprintf("%s: %s", subject, campaign.Name.String)
	description := orDefault(campaign.Description, "No description provided.")
	return Message{
		Username: fmt.Sprintf("%s drop.", subject),
		Title:    title,
		Content: fmt.Sprintf(
			"%s\n%s\nStarts: %s\nEnds: %s",
			title, description,
			discordTimestamp(campaign.StartsAt),
			discordTimestamp(campaign.EndsAt),
		),
		Text: fmt.Sprintf(
			"%s\n%s\nStarts: %s\nEnds: %s",
			title, description,
			plainTimestamp(campaign.StartsAt),
			plainTimestamp(campaign.EndsAt),
		),
	}
}

type Notifier struct {
	qry   *db.Queries
	tel   telemetry.API
	sinks map[db.WebhookKind]Sink
}

func NewNotifier(qry *db.Queries, tel telemetry.API) Notifier {
	assert.NotNil(qry)
	assert.NotNil(tel)
	return Notifier{
		qry:   qry,
		tel:   tel,
		sinks: map[db.WebhookKind]Sink{},
	}
}

// WithSink registers the sink used for webhooks of the given kind.
func (n Notifier) WithSink(kind db.WebhookKind, sink Sink) Notifier {
	assert.NotNil(sink)
	sinks := maps.Clone(n.sinks)
	sinks[kind] = sink
	n.sinks = sinks
	return n
}

// DropCampaignCreated sends the campaign to everyone subscribed to its game and to the
// organization owning that game. Failures are reported, ingestion never sees them.
func (n Notifier) DropCampaignCreated(ctx context.Context, campaign db.DropCampaign) {
	ctx, span := tracer.Start(ctx, "DropCampaignCreated")
	defer span.End()
	span.SetAttributes(attribute.String("campaign", campaign.TwitchID))

	if !campaign.GameID.Valid {
		n.tel.ReportDebug("new campaign has no game", telemetry.KV{Key: "campaign", Value: campaign.TwitchID})
		return
	}
	game, err := n.qry.GetGame(ctx, campaign.GameID.String)
	if errors.Is(err, sql.ErrNoRows) {
		n.tel.ReportDebug("new campaign references unknown game", telemetry.KV{Key: "game", Value: campaign.GameID.String})
		return
	}
	if err != nil {
		n.tel.ReportBroken(report_db_query, err)
		return
	}

	subscribers, err := n.qry.ListGameSubscribers(ctx, game.TwitchID)
	if err != nil {
		n.tel.ReportBroken(report_db_query, err)
		return
	}
	n.deliver(ctx, subscribers, NewMessage(orDefault(game.Name, "Unknown"), campaign))

	if !game.OwnerID.Valid {
		return
	}
	owner, err := n.qry.GetOwner(ctx, game.OwnerID.String)
	if errors.Is(err, sql.ErrNoRows) {
		return
	}
	if err != nil {
		n.tel.ReportBroken(report_db_query, err)
		return
	}
	subscribers, err = n.qry.ListOwnerSubscribers(ctx, owner.TwitchID)
	if err != nil {
		n.tel.ReportBroken(report_db_query, err)
		return
	}
	n.deliver(ctx, subscribers, NewMessage(orDefault(owner.Name, "Unknown"), campaign))
}

func (n Notifier) deliver(ctx context.Context, webhooks []db.Webhook, msg Message) {
	for _, hook := range webhooks {
		sink, ok := n.sinks[hook.Kind]
		if !ok {
			n.tel.ReportWarning(
				report_unknown_kind,
				telemetry.KV{Key: "webhook", Value: hook.ID},
				telemetry.KV{Key: "kind", Value: hook.Kind},
			)
			continue
		}
		err := sink.Send(ctx, hook.Target, msg)
		if err != nil {
			n.tel.ReportBroken(
				report_send,
				telemetry.KV{Key: "webhook", Value: hook.ID},
				err,
			)
			continue
		}
		n.tel.ReportDebug("notification sent", telemetry.KV{Key: "webhook", Value: hook.ID}, telemetry.KV{Key: "title", Value: msg.Title})
	}
}
