package ingest

import (
	"context"

	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/telemetry"
)

const (
	SHAPE_REWARD_CAMPAIGNS = "reward_campaigns"
	SHAPE_DROP_CAMPAIGN    = "drop_campaign"
	SHAPE_DROP_CAMPAIGNS   = "drop_campaigns"
)

// Process ingests one GraphQL response. A response may carry several of the known shapes,
// each one is checked on its own. Responses that match none of them are ignored, the browser
// captures plenty of unrelated operations.
func (i Ingester) Process(ctx context.Context, payload gqljson.Value, origin Origin) (Summary, error) {
	var summary Summary
	if payload.Kind() != gqljson.Object || payload.Empty() {
		i.tel.ReportWarning(
			report_payload_shape,
			telemetry.KV{Key: "kind", Value: payload.Kind().String()},
		)
		summary.Skipped++
		return summary, nil
	}

	data := payload.Get("data")
	matched := false

	if campaigns := data.Get("rewardCampaignsAvailableToUser"); campaigns.Kind() == gqljson.Array {
		matched = true
		i.archive(SHAPE_REWARD_CAMPAIGNS, payload, origin)
		for _, obj := range campaigns.Items() {
			campaign, err := i.IngestRewardCampaign(ctx, obj, origin)
			if err != nil {
				return summary, err
			}
			if campaign == nil {
				summary.Skipped++
				continue
			}
			summary.RewardCampaigns++
		}
	}

	if obj := data.Get("user", "dropCampaign"); obj.Kind() == gqljson.Object {
		matched = true
		i.archive(SHAPE_DROP_CAMPAIGN, payload, origin)
		err := i.processDropCampaign(ctx, obj, origin, &summary)
		if err != nil {
			return summary, err
		}
	}

	if campaigns := data.Get("currentUser", "dropCampaigns"); campaigns.Kind() == gqljson.Array {
		matched = true
		i.archive(SHAPE_DROP_CAMPAIGNS, payload, origin)
		for _, obj := range campaigns.Items() {
			err := i.processDropCampaign(ctx, obj, origin, &summary)
			if err != nil {
				return summary, err
			}
		}
	}

	if !matched {
		i.tel.ReportDebug("payload matched no known shape", telemetry.KV{Key: "keys", Value: data.Keys()})
	}
	return summary, nil
}

func (i Ingester) processDropCampaign(ctx context.Context, obj gqljson.Value, origin Origin, summary *Summary) error {
	campaign, err := i.IngestDropCampaign(ctx, obj, origin)
	if err != nil {
		return err
	}
	if campaign == nil {
		summary.Skipped++
		return nil
	}
	summary.DropCampaigns++
	return nil
}

// ProcessAll accepts either a single response or the list of responses captured during one
// browser session.
func (i Ingester) ProcessAll(ctx context.Context, payload gqljson.Value, origin Origin) (Summary, error) {
	if payload.Kind() != gqljson.Array {
		return i.Process(ctx, payload, origin)
	}

	var summary Summary
	for _, item := range payload.Items() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		result, err := i.Process(ctx, item, origin)
		summary.Add(result)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (i Ingester) archive(shape string, payload gqljson.Value, origin Origin) {
	if i.archiver == nil || origin != LIVE {
		return
	}
	_, err := i.archiver.Save(shape, payload)
	if err != nil {
		i.tel.ReportBroken(report_archive, err, telemetry.KV{Key: "shape", Value: shape})
	}
}
