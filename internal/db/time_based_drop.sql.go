package db

import (
	"context"
	"database/sql"
)

const timeBasedDropColumns = `twitch_id, name, required_subs, required_minutes_watched, starts_at, ends_at, drop_campaign_id, created_at, modified_at`

func scanTimeBasedDrop(row rowScanner) (TimeBasedDrop, error) {
	var i TimeBasedDrop
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.RequiredSubs,
		&i.RequiredMinutesWatched,
		&i.StartsAt,
		&i.EndsAt,
		&i.DropCampaignID,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const getTimeBasedDrop = `-- name: GetTimeBasedDrop :one
select ` + timeBasedDropColumns + ` from time_based_drop
where twitch_id = ?
`

func (q *Queries) GetTimeBasedDrop(ctx context.Context, twitchID string) (TimeBasedDrop, error) {
	return scanTimeBasedDrop(q.db.QueryRowContext(ctx, getTimeBasedDrop, twitchID))
}

const createTimeBasedDrop = `-- name: CreateTimeBasedDrop :exec
insert into time_based_drop (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateTimeBasedDrop(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createTimeBasedDrop, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateTimeBasedDrop = `-- name: UpdateTimeBasedDrop :exec
update time_based_drop set
    name = ?,
    required_subs = ?,
    required_minutes_watched = ?,
    starts_at = ?,
    ends_at = ?,
    drop_campaign_id = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateTimeBasedDrop(ctx context.Context, arg TimeBasedDrop) error {
	_, err := q.db.ExecContext(ctx, updateTimeBasedDrop,
		arg.Name,
		arg.RequiredSubs,
		arg.RequiredMinutesWatched,
		arg.StartsAt,
		arg.EndsAt,
		arg.DropCampaignID,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const listTimeBasedDropsByCampaign = `-- name: ListTimeBasedDropsByCampaign :many
select ` + timeBasedDropColumns + ` from time_based_drop
where drop_campaign_id = ?
order by required_minutes_watched, twitch_id
`

func (q *Queries) ListTimeBasedDropsByCampaign(ctx context.Context, dropCampaignID sql.NullString) ([]TimeBasedDrop, error) {
	rows, err := q.db.QueryContext(ctx, listTimeBasedDropsByCampaign, dropCampaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TimeBasedDrop
	for rows.Next() {
		i, err := scanTimeBasedDrop(rows)
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
