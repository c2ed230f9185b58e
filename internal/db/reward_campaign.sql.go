package db

import (
	"context"
	"database/sql"
	"time"
)

const rewardCampaignColumns = `twitch_id, name, brand, summary, instructions, status, starts_at, ends_at, external_url, about_url, is_site_wide, sub_goal, minute_watched_goal, image_url, reward_value_url_param, game_id, created_at, modified_at`

func scanRewardCampaign(row rowScanner) (RewardCampaign, error) {
	var i RewardCampaign
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.Brand,
		&i.Summary,
		&i.Instructions,
		&i.Status,
		&i.StartsAt,
		&i.EndsAt,
		&i.ExternalUrl,
		&i.AboutUrl,
		&i.IsSiteWide,
		&i.SubGoal,
		&i.MinuteWatchedGoal,
		&i.ImageUrl,
		&i.RewardValueUrlParam,
		&i.GameID,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const getRewardCampaign = `-- name: GetRewardCampaign :one
select ` + rewardCampaignColumns + ` from reward_campaign
where twitch_id = ?
`

func (q *Queries) GetRewardCampaign(ctx context.Context, twitchID string) (RewardCampaign, error) {
	return scanRewardCampaign(q.db.QueryRowContext(ctx, getRewardCampaign, twitchID))
}

const createRewardCampaign = `-- name: CreateRewardCampaign :exec
insert into reward_campaign (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateRewardCampaign(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createRewardCampaign, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateRewardCampaign = `-- name: UpdateRewardCampaign :exec
update reward_campaign set
    name = ?,
    brand = ?,
    summary = ?,
    instructions = ?,
    status = ?,
    starts_at = ?,
    ends_at = ?,
    external_url = ?,
    about_url = ?,
    is_site_wide = ?,
    sub_goal = ?,
    minute_watched_goal = ?,
    image_url = ?,
    reward_value_url_param = ?,
    game_id = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateRewardCampaign(ctx context.Context, arg RewardCampaign) error {
	_, err := q.db.ExecContext(ctx, updateRewardCampaign,
		arg.Name,
		arg.Brand,
		arg.Summary,
		arg.Instructions,
		arg.Status,
		arg.StartsAt,
		arg.EndsAt,
		arg.ExternalUrl,
		arg.AboutUrl,
		arg.IsSiteWide,
		arg.SubGoal,
		arg.MinuteWatchedGoal,
		arg.ImageUrl,
		arg.RewardValueUrlParam,
		arg.GameID,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const listActiveRewardCampaigns = `-- name: ListActiveRewardCampaigns :many
select ` + rewardCampaignColumns + ` from reward_campaign
where ends_at > ?
order by ends_at, twitch_id
`

func (q *Queries) ListActiveRewardCampaigns(ctx context.Context, now time.Time) ([]RewardCampaign, error) {
	rows, err := q.db.QueryContext(ctx, listActiveRewardCampaigns, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RewardCampaign
	for rows.Next() {
		i, err := scanRewardCampaign(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const rewardColumns = `twitch_id, name, banner_image_url, thumbnail_image_url, earnable_until, redemption_instructions, redemption_url, reward_campaign_id, created_at, modified_at`

func scanReward(row rowScanner) (Reward, error) {
	var i Reward
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.BannerImageUrl,
		&i.ThumbnailImageUrl,
		&i.EarnableUntil,
		&i.RedemptionInstructions,
		&i.RedemptionUrl,
		&i.RewardCampaignID,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const getReward = `-- name: GetReward :one
select ` + rewardColumns + ` from reward
where twitch_id = ?
`

func (q *Queries) GetReward(ctx context.Context, twitchID string) (Reward, error) {
	return scanReward(q.db.QueryRowContext(ctx, getReward, twitchID))
}

const createReward = `-- name: CreateReward :exec
insert into reward (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateReward(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createReward, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateReward = `-- name: UpdateReward :exec
update reward set
    name = ?,
    banner_image_url = ?,
    thumbnail_image_url = ?,
    earnable_until = ?,
    redemption_instructions = ?,
    redemption_url = ?,
    reward_campaign_id = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateReward(ctx context.Context, arg Reward) error {
	_, err := q.db.ExecContext(ctx, updateReward,
		arg.Name,
		arg.BannerImageUrl,
		arg.ThumbnailImageUrl,
		arg.EarnableUntil,
		arg.RedemptionInstructions,
		arg.RedemptionUrl,
		arg.RewardCampaignID,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const listRewardsByCampaign = `-- name: ListRewardsByCampaign :many
select ` + rewardColumns + ` from reward
where reward_campaign_id = ?
order by name, twitch_id
`

func (q *Queries) ListRewardsByCampaign(ctx context.Context, rewardCampaignID sql.NullString) ([]Reward, error) {
	rows, err := q.db.QueryContext(ctx, listRewardsByCampaign, rewardCampaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Reward
	for rows.Next() {
		i, err := scanReward(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
