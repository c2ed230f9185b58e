package ingest

import (
	"context"
	"fmt"

	"ttvdrops/internal/db"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// IngestDropCampaign stores a DropCampaign object and everything nested in it. It returns nil
// without an error when the campaign itself was rejected, ex. because it has no id or the wrong
// typename. Nothing is written in that case.
func (i Ingester) IngestDropCampaign(ctx context.Context, obj gqljson.Value, origin Origin) (*db.DropCampaign, error) {
	ctx, span := tracer.Start(ctx, "IngestDropCampaign")
	defer span.End()

	id := obj.ID()
	span.SetAttributes(
		attribute.String("twitch_id", id),
		attribute.String("origin", origin.String()),
	)
	if id == "" {
		i.tel.ReportWarning(
			report_missing_id,
			telemetry.KV{Key: "entity", Value: dropCampaignRepo.kind},
			telemetry.KV{Key: "keys", Value: obj.Keys()},
		)
		return nil, nil
	}

	var campaign Outcome[db.DropCampaign]
	committed, err := i.inTx(ctx, func(u Upserter, tx *db.Queries) (bool, error) {
		var err error
		campaign, err = i.assembleDropCampaign(ctx, u, tx, obj, origin)
		if err != nil {
			return false, err
		}
		return !campaign.Skipped, nil
	})
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("ingest drop campaign %s: %w", id, err)
	}
	if !committed {
		return nil, nil
	}

	if campaign.Created {
		i.notifier.DropCampaignCreated(ctx, campaign.Record)
	}
	return &campaign.Record, nil
}

func (i Ingester) assembleDropCampaign(ctx context.Context, u Upserter, tx *db.Queries, obj gqljson.Value, origin Origin) (Outcome[db.DropCampaign], error) {
	var ownerID string
	if owner := obj.Get("owner"); !owner.Empty() {
		out, err := u.Owner(ctx, owner)
		if err != nil {
			return Outcome[db.DropCampaign]{}, err
		}
		if out.Found {
			ownerID = out.Record.TwitchID
		}
	}

	var gameID string
	if game := obj.Get("game"); !game.Empty() {
		out, err := u.Game(ctx, game, ownerID)
		if err != nil {
			return Outcome[db.DropCampaign]{}, err
		}
		if out.Found {
			gameID = out.Record.TwitchID
		}
	}

	campaign, err := u.DropCampaign(ctx, obj, gameID, origin)
	if err != nil || campaign.Skipped {
		return campaign, err
	}
	campaignID := campaign.Record.TwitchID

	if !obj.Get("eventBasedDrops").Empty() {
		i.tel.ReportWarning(
			report_unimplemented,
			telemetry.KV{Key: "field", Value: "eventBasedDrops"},
			telemetry.KV{Key: "drop_campaign", Value: campaignID},
		)
	}

	for _, channel := range obj.Get("allow", "channels").Items() {
		out, err := u.Channel(ctx, channel)
		if err != nil {
			return Outcome[db.DropCampaign]{}, err
		}
		if out.Skipped {
			continue
		}
		_, err = tx.LinkDropCampaignChannel(ctx, db.LinkDropCampaignChannelParams{
			DropCampaignID: campaignID,
			ChannelID:      out.Record.TwitchID,
		})
		if err != nil {
			i.tel.ReportBroken(report_db_query, err, telemetry.KV{Key: "drop_campaign", Value: campaignID})
			return Outcome[db.DropCampaign]{}, err
		}
	}

	// only direct entries, preconditionDrops nests references to drops that may belong elsewhere
	for _, drop := range obj.Get("timeBasedDrops").Items() {
		if drop.Typename() != TYPENAME_TIME_BASED_DROP {
			i.tel.ReportWarning(
				report_wrong_typename,
				telemetry.KV{Key: "entity", Value: timeBasedDropRepo.kind},
				telemetry.KV{Key: "twitch_id", Value: drop.ID()},
				telemetry.KV{Key: "expected", Value: TYPENAME_TIME_BASED_DROP},
				telemetry.KV{Key: "got", Value: drop.Typename()},
				telemetry.KV{Key: "drop_campaign", Value: campaignID},
			)
			continue
		}
		err := i.assembleTimeBasedDrop(ctx, u, drop, campaignID)
		if err != nil {
			return Outcome[db.DropCampaign]{}, err
		}
	}

	return campaign, nil
}

func (i Ingester) assembleTimeBasedDrop(ctx context.Context, u Upserter, obj gqljson.Value, campaignID string) error {
	if !obj.Get("preconditionDrops").IsNull() {
		i.tel.ReportWarning(
			report_unimplemented,
			telemetry.KV{Key: "field", Value: "preconditionDrops"},
			telemetry.KV{Key: "time_based_drop", Value: obj.ID()},
		)
	}

	drop, err := u.TimeBasedDrop(ctx, obj, campaignID)
	if err != nil {
		return err
	}
	if drop.Skipped {
		return nil
	}
	dropID := drop.Record.TwitchID

	for _, benefit := range gqljson.Locate(obj.Get("benefitEdges"), TYPENAME_DROP_BENEFIT) {
		var ownerID string
		if owner := benefit.Get("ownerOrganization"); !owner.Empty() {
			out, err := u.Owner(ctx, owner)
			if err != nil {
				return err
			}
			if out.Found {
				ownerID = out.Record.TwitchID
			}
		}

		_, err := u.Benefit(ctx, benefit, dropID, ownerID)
		if err != nil {
			return err
		}
	}
	return nil
}
