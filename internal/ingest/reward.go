package ingest

import (
	"context"
	"fmt"

	"ttvdrops/internal/db"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

// IngestRewardCampaign stores a RewardCampaign object, its game and its rewards. Like
// IngestDropCampaign it returns nil when the campaign was rejected.
// Status is not special cased for reward campaigns so origin is only recorded on the span.
func (i Ingester) IngestRewardCampaign(ctx context.Context, obj gqljson.Value, origin Origin) (*db.RewardCampaign, error) {
	ctx, span := tracer.Start(ctx, "IngestRewardCampaign")
	defer span.End()

	id := obj.ID()
	span.SetAttributes(
		attribute.String("twitch_id", id),
		attribute.String("origin", origin.String()),
	)
	if id == "" {
		i.tel.ReportWarning(
			report_missing_id,
			telemetry.KV{Key: "entity", Value: rewardCampaignRepo.kind},
			telemetry.KV{Key: "keys", Value: obj.Keys()},
		)
		return nil, nil
	}

	var campaign Outcome[db.RewardCampaign]
	committed, err := i.inTx(ctx, func(u Upserter, _ *db.Queries) (bool, error) {
		var err error
		campaign, err = assembleRewardCampaign(ctx, u, obj)
		if err != nil {
			return false, err
		}
		return !campaign.Skipped, nil
	})
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("ingest reward campaign %s: %w", id, err)
	}
	if !committed {
		return nil, nil
	}
	return &campaign.Record, nil
}

func assembleRewardCampaign(ctx context.Context, u Upserter, obj gqljson.Value) (Outcome[db.RewardCampaign], error) {
	var gameID string
	if game := obj.Get("game"); !game.Empty() {
		var ownerID string
		if owner := game.Get("ownerOrganization"); !owner.Empty() {
			out, err := u.Owner(ctx, owner)
			if err != nil {
				return Outcome[db.RewardCampaign]{}, err
			}
			if out.Found {
				ownerID = out.Record.TwitchID
			}
		}
		out, err := u.Game(ctx, game, ownerID)
		if err != nil {
			return Outcome[db.RewardCampaign]{}, err
		}
		if out.Found {
			gameID = out.Record.TwitchID
		}
	}

	campaign, err := u.RewardCampaign(ctx, obj, gameID)
	if err != nil || campaign.Skipped {
		return campaign, err
	}

	for _, reward := range gqljson.Locate(obj.Get("rewards"), TYPENAME_REWARD) {
		_, err := u.Reward(ctx, reward, campaign.Record.TwitchID)
		if err != nil {
			return Outcome[db.RewardCampaign]{}, err
		}
	}
	return campaign, nil
}
