package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ttvdrops/internal/assert"
	"ttvdrops/internal/chrono"
	"ttvdrops/internal/db"
	"ttvdrops/internal/gqljson"
	"ttvdrops/internal/telemetry"
)

const (
	TYPENAME_ORGANIZATION    = "Organization"
	TYPENAME_GAME            = "Game"
	TYPENAME_DROP_CAMPAIGN   = "DropCampaign"
	TYPENAME_TIME_BASED_DROP = "TimeBasedDrop"
	TYPENAME_DROP_BENEFIT    = "DropBenefit"
	TYPENAME_CHANNEL         = "Channel"
	TYPENAME_REWARD_CAMPAIGN = "RewardCampaign"
	TYPENAME_REWARD          = "Reward"
)

const (
	STATUS_ACTIVE  = "ACTIVE"
	STATUS_EXPIRED = "EXPIRED"
)

func GameUrl(slug string) string {
	return fmt.Sprintf("https://www.twitch.tv/directory/game/%s", slug)
}

func ChannelUrl(name string) string {
	return fmt.Sprintf("https://www.twitch.tv/%s", name)
}

var ownerRepo = repository[db.Owner]{
	kind:       "owner",
	typename:   TYPENAME_ORGANIZATION,
	get:        (*db.Queries).GetOwner,
	create:     (*db.Queries).CreateOwner,
	update:     (*db.Queries).UpdateOwner,
	modifiedAt: func(r *db.Owner) *time.Time { return &r.ModifiedAt },
}

var ownerFields = []field[db.Owner]{
	stringField("name", func(r *db.Owner) *sql.NullString { return &r.Name }),
}

var gameRepo = repository[db.Game]{
	kind:       "game",
	typename:   TYPENAME_GAME,
	get:        (*db.Queries).GetGame,
	create:     (*db.Queries).CreateGame,
	update:     (*db.Queries).UpdateGame,
	modifiedAt: func(r *db.Game) *time.Time { return &r.ModifiedAt },
}

var gameFields = []field[db.Game]{
	stringField("displayName", func(r *db.Game) *sql.NullString { return &r.Name }),
	stringField("boxArtURL", func(r *db.Game) *sql.NullString { return &r.BoxArtUrl }),
	stringField("slug", func(r *db.Game) *sql.NullString { return &r.Slug }),
	derivedField("slug", func(r *db.Game) *sql.NullString { return &r.GameUrl }, GameUrl),
}

var dropCampaignRepo = repository[db.DropCampaign]{
	kind:       "drop_campaign",
	typename:   TYPENAME_DROP_CAMPAIGN,
	get:        (*db.Queries).GetDropCampaign,
	create:     (*db.Queries).CreateDropCampaign,
	update:     (*db.Queries).UpdateDropCampaign,
	modifiedAt: func(r *db.DropCampaign) *time.Time { return &r.ModifiedAt },
}

var dropCampaignFields = []field[db.DropCampaign]{
	stringField("name", func(r *db.DropCampaign) *sql.NullString { return &r.Name }),
	stringField("description", func(r *db.DropCampaign) *sql.NullString { return &r.Description }),
	timeField("startAt", func(r *db.DropCampaign) *sql.NullTime { return &r.StartsAt }),
	timeField("endAt", func(r *db.DropCampaign) *sql.NullTime { return &r.EndsAt }),
	stringField("accountLinkURL", func(r *db.DropCampaign) *sql.NullString { return &r.AccountLinkUrl }),
	stringField("detailsURL", func(r *db.DropCampaign) *sql.NullString { return &r.DetailsUrl }),
	stringField("imageURL", func(r *db.DropCampaign) *sql.NullString { return &r.ImageUrl }),
}

// statusField applies any differing status for live payloads. Replayed payloads may be stale,
// so the only transition they can make is ACTIVE -> EXPIRED, they can still set a status on a
// campaign that has none.
func statusField(origin Origin) field[db.DropCampaign] {
	return field[db.DropCampaign]{
		key: "status",
		apply: func(rec *db.DropCampaign, value gqljson.Value) bool {
			status, ok := value.Str()
			if !ok {
				return false
			}
			if origin == REPLAY && rec.Status.Valid && rec.Status.String != "" {
				if rec.Status.String != STATUS_ACTIVE || status != STATUS_EXPIRED {
					return false
				}
			}
			return setString(&rec.Status, status)
		},
	}
}

var timeBasedDropRepo = repository[db.TimeBasedDrop]{
	kind:       "time_based_drop",
	typename:   TYPENAME_TIME_BASED_DROP,
	get:        (*db.Queries).GetTimeBasedDrop,
	create:     (*db.Queries).CreateTimeBasedDrop,
	update:     (*db.Queries).UpdateTimeBasedDrop,
	modifiedAt: func(r *db.TimeBasedDrop) *time.Time { return &r.ModifiedAt },
}

var timeBasedDropFields = []field[db.TimeBasedDrop]{
	stringField("name", func(r *db.TimeBasedDrop) *sql.NullString { return &r.Name }),
	intField("requiredSubs", func(r *db.TimeBasedDrop) *sql.NullInt64 { return &r.RequiredSubs }),
	intField("requiredMinutesWatched", func(r *db.TimeBasedDrop) *sql.NullInt64 { return &r.RequiredMinutesWatched }),
	timeField("startAt", func(r *db.TimeBasedDrop) *sql.NullTime { return &r.StartsAt }),
	timeField("endAt", func(r *db.TimeBasedDrop) *sql.NullTime { return &r.EndsAt }),
}

var benefitRepo = repository[db.Benefit]{
	kind:       "benefit",
	typename:   TYPENAME_DROP_BENEFIT,
	get:        (*db.Queries).GetBenefit,
	create:     (*db.Queries).CreateBenefit,
	update:     (*db.Queries).UpdateBenefit,
	modifiedAt: func(r *db.Benefit) *time.Time { return &r.ModifiedAt },
}

var benefitFields = []field[db.Benefit]{
	stringField("name", func(r *db.Benefit) *sql.NullString { return &r.Name }),
	stringField("imageAssetURL", func(r *db.Benefit) *sql.NullString { return &r.ImageUrl }),
	intField("entitlementLimit", func(r *db.Benefit) *sql.NullInt64 { return &r.EntitlementLimit }),
	boolField("isIosAvailable", func(r *db.Benefit) *sql.NullBool { return &r.IsIosAvailable }),
	timeField("createdAt", func(r *db.Benefit) *sql.NullTime { return &r.TwitchCreatedAt }),
}

var channelRepo = repository[db.Channel]{
	kind:       "channel",
	typename:   TYPENAME_CHANNEL,
	get:        (*db.Queries).GetChannel,
	create:     (*db.Queries).CreateChannel,
	update:     (*db.Queries).UpdateChannel,
	modifiedAt: func(r *db.Channel) *time.Time { return &r.ModifiedAt },
}

var channelFields = []field[db.Channel]{
	stringField("name", func(r *db.Channel) *sql.NullString { return &r.Name }),
	stringField("displayName", func(r *db.Channel) *sql.NullString { return &r.DisplayName }),
	derivedField("name", func(r *db.Channel) *sql.NullString { return &r.TwitchUrl }, ChannelUrl),
}

var rewardCampaignRepo = repository[db.RewardCampaign]{
	kind:       "reward_campaign",
	typename:   TYPENAME_REWARD_CAMPAIGN,
	get:        (*db.Queries).GetRewardCampaign,
	create:     (*db.Queries).CreateRewardCampaign,
	update:     (*db.Queries).UpdateRewardCampaign,
	modifiedAt: func(r *db.RewardCampaign) *time.Time { return &r.ModifiedAt },
}

var rewardCampaignFields = []field[db.RewardCampaign]{
	stringField("name", func(r *db.RewardCampaign) *sql.NullString { return &r.Name }),
	stringField("brand", func(r *db.RewardCampaign) *sql.NullString { return &r.Brand }),
	stringField("summary", func(r *db.RewardCampaign) *sql.NullString { return &r.Summary }),
	stringField("instructions", func(r *db.RewardCampaign) *sql.NullString { return &r.Instructions }),
	stringField("status", func(r *db.RewardCampaign) *sql.NullString { return &r.Status }),
	timeField("startsAt", func(r *db.RewardCampaign) *sql.NullTime { return &r.StartsAt }),
	timeField("endsAt", func(r *db.RewardCampaign) *sql.NullTime { return &r.EndsAt }),
	stringField("externalURL", func(r *db.RewardCampaign) *sql.NullString { return &r.ExternalUrl }),
	stringField("aboutURL", func(r *db.RewardCampaign) *sql.NullString { return &r.AboutUrl }),
	boolField("isSitewide", func(r *db.RewardCampaign) *sql.NullBool { return &r.IsSiteWide }),
	intField("unlockRequirements.subsGoal", func(r *db.RewardCampaign) *sql.NullInt64 { return &r.SubGoal }),
	intField("unlockRequirements.minuteWatchedGoal", func(r *db.RewardCampaign) *sql.NullInt64 { return &r.MinuteWatchedGoal }),
	stringField("image.image1xURL", func(r *db.RewardCampaign) *sql.NullString { return &r.ImageUrl }),
	stringField("rewardValueURLParam", func(r *db.RewardCampaign) *sql.NullString { return &r.RewardValueUrlParam }),
}

var rewardRepo = repository[db.Reward]{
	kind:       "reward",
	typename:   TYPENAME_REWARD,
	get:        (*db.Queries).GetReward,
	create:     (*db.Queries).CreateReward,
	update:     (*db.Queries).UpdateReward,
	modifiedAt: func(r *db.Reward) *time.Time { return &r.ModifiedAt },
}

var rewardFields = []field[db.Reward]{
	stringField("name", func(r *db.Reward) *sql.NullString { return &r.Name }),
	stringField("bannerImage.image1xURL", func(r *db.Reward) *sql.NullString { return &r.BannerImageUrl }),
	stringField("thumbnailImage.image1xURL", func(r *db.Reward) *sql.NullString { return &r.ThumbnailImageUrl }),
	timeField("earnableUntil", func(r *db.Reward) *sql.NullTime { return &r.EarnableUntil }),
	stringField("redemptionInstructions", func(r *db.Reward) *sql.NullString { return &r.RedemptionInstructions }),
	stringField("redemptionURL", func(r *db.Reward) *sql.NullString { return &r.RedemptionUrl }),
}

// Upserter normalizes one json object onto one row. Parent ids are twitch ids, an empty parent
// id leaves the stored reference untouched.
type Upserter struct {
	qry  *db.Queries
	time chrono.TimeAPI
	tel  telemetry.API
}

func NewUpserter(qry *db.Queries, clock chrono.TimeAPI, tel telemetry.API) Upserter {
	assert.NotNil(qry)
	assert.NotNil(clock)
	assert.NotNil(tel)
	return Upserter{
		qry:  qry,
		time: clock,
		tel:  tel,
	}
}

func (u Upserter) env() upsertEnv {
	return upsertEnv{
		qry: u.qry,
		now: u.time.Now(),
		tel: u.tel,
	}
}

func (u Upserter) Owner(ctx context.Context, obj gqljson.Value) (Outcome[db.Owner], error) {
	return upsert(ctx, u.env(), ownerRepo, obj, ownerFields)
}

func (u Upserter) Game(ctx context.Context, obj gqljson.Value, ownerID string) (Outcome[db.Game], error) {
	return upsert(
		ctx, u.env(), gameRepo, obj, gameFields,
		parentRule(func(r *db.Game) *sql.NullString { return &r.OwnerID }, ownerID),
	)
}

func (u Upserter) DropCampaign(ctx context.Context, obj gqljson.Value, gameID string, origin Origin) (Outcome[db.DropCampaign], error) {
	fields := append([]field[db.DropCampaign]{statusField(origin)}, dropCampaignFields...)
	return upsert(
		ctx, u.env(), dropCampaignRepo, obj, fields,
		parentRule(func(r *db.DropCampaign) *sql.NullString { return &r.GameID }, gameID),
	)
}

func (u Upserter) TimeBasedDrop(ctx context.Context, obj gqljson.Value, dropCampaignID string) (Outcome[db.TimeBasedDrop], error) {
	return upsert(
		ctx, u.env(), timeBasedDropRepo, obj, timeBasedDropFields,
		parentRule(func(r *db.TimeBasedDrop) *sql.NullString { return &r.DropCampaignID }, dropCampaignID),
	)
}

func (u Upserter) Benefit(ctx context.Context, obj gqljson.Value, timeBasedDropID, ownerID string) (Outcome[db.Benefit], error) {
	return upsert(
		ctx, u.env(), benefitRepo, obj, benefitFields,
		parentRule(func(r *db.Benefit) *sql.NullString { return &r.TimeBasedDropID }, timeBasedDropID),
		parentRule(func(r *db.Benefit) *sql.NullString { return &r.OwnerID }, ownerID),
	)
}

func (u Upserter) Channel(ctx context.Context, obj gqljson.Value) (Outcome[db.Channel], error) {
	return upsert(ctx, u.env(), channelRepo, obj, channelFields)
}

func (u Upserter) RewardCampaign(ctx context.Context, obj gqljson.Value, gameID string) (Outcome[db.RewardCampaign], error) {
	return upsert(
		ctx, u.env(), rewardCampaignRepo, obj, rewardCampaignFields,
		parentRule(func(r *db.RewardCampaign) *sql.NullString { return &r.GameID }, gameID),
	)
}

func (u Upserter) Reward(ctx context.Context, obj gqljson.Value, rewardCampaignID string) (Outcome[db.Reward], error) {
	return upsert(
		ctx, u.env(), rewardRepo, obj, rewardFields,
		parentRule(func(r *db.Reward) *sql.NullString { return &r.RewardCampaignID }, rewardCampaignID),
	)
}
