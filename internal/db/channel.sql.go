package db

import (
	"context"
)

const getChannel = `-- name: GetChannel :one
select twitch_id, name, display_name, twitch_url, created_at, modified_at from channel
where twitch_id = ?
`

func (q *Queries) GetChannel(ctx context.Context, twitchID string) (Channel, error) {
	row := q.db.QueryRowContext(ctx, getChannel, twitchID)
	var i Channel
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.DisplayName,
		&i.TwitchUrl,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const createChannel = `-- name: CreateChannel :exec
insert into channel (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateChannel(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createChannel, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateChannel = `-- name: UpdateChannel :exec
update channel set
    name = ?,
    display_name = ?,
    twitch_url = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateChannel(ctx context.Context, arg Channel) error {
	_, err := q.db.ExecContext(ctx, updateChannel,
		arg.Name,
		arg.DisplayName,
		arg.TwitchUrl,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const linkDropCampaignChannel = `-- name: LinkDropCampaignChannel :execrows
insert into drop_campaign_channel (drop_campaign_id, channel_id)
values (?, ?)
on conflict do nothing
`

type LinkDropCampaignChannelParams struct {
	DropCampaignID string
	ChannelID      string
}

// LinkDropCampaignChannel returns 1 when the link is new and 0 when it already existed.
func (q *Queries) LinkDropCampaignChannel(ctx context.Context, arg LinkDropCampaignChannelParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, linkDropCampaignChannel, arg.DropCampaignID, arg.ChannelID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listChannelsByDropCampaign = `-- name: ListChannelsByDropCampaign :many
select c.twitch_id, c.name, c.display_name, c.twitch_url, c.created_at, c.modified_at from channel c
join drop_campaign_channel dc on dc.channel_id = c.twitch_id
where dc.drop_campaign_id = ?
order by c.name, c.twitch_id
`

func (q *Queries) ListChannelsByDropCampaign(ctx context.Context, dropCampaignID string) ([]Channel, error) {
	rows, err := q.db.QueryContext(ctx, listChannelsByDropCampaign, dropCampaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Channel
	for rows.Next() {
		var i Channel
		if err := rows.Scan(
			&i.TwitchID,
			&i.Name,
			&i.DisplayName,
			&i.TwitchUrl,
			&i.CreatedAt,
			&i.ModifiedAt,
		); err != nil {
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
