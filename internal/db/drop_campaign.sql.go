package db

import (
	"context"
	"time"
)

const dropCampaignColumns = `twitch_id, name, description, status, starts_at, ends_at, account_link_url, details_url, image_url, game_id, created_at, modified_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDropCampaign(row rowScanner) (DropCampaign, error) {
	var i DropCampaign
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.Description,
		&i.Status,
		&i.StartsAt,
		&i.EndsAt,
		&i.AccountLinkUrl,
		&i.DetailsUrl,
		&i.ImageUrl,
		&i.GameID,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const getDropCampaign = `-- name: GetDropCampaign :one
select ` + dropCampaignColumns + ` from drop_campaign
where twitch_id = ?
`

func (q *Queries) GetDropCampaign(ctx context.Context, twitchID string) (DropCampaign, error) {
	return scanDropCampaign(q.db.QueryRowContext(ctx, getDropCampaign, twitchID))
}

const createDropCampaign = `-- name: CreateDropCampaign :exec
insert into drop_campaign (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateDropCampaign(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createDropCampaign, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateDropCampaign = `-- name: UpdateDropCampaign :exec
update drop_campaign set
    name = ?,
    description = ?,
    status = ?,
    starts_at = ?,
    ends_at = ?,
    account_link_url = ?,
    details_url = ?,
    image_url = ?,
    game_id = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateDropCampaign(ctx context.Context, arg DropCampaign) error {
	_, err := q.db.ExecContext(ctx, updateDropCampaign,
		arg.Name,
		arg.Description,
		arg.Status,
		arg.StartsAt,
		arg.EndsAt,
		arg.AccountLinkUrl,
		arg.DetailsUrl,
		arg.ImageUrl,
		arg.GameID,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const listActiveDropCampaigns = `-- name: ListActiveDropCampaigns :many
select ` + dropCampaignColumns + ` from drop_campaign
where status = 'ACTIVE' and ends_at > ?
order by ends_at, twitch_id
`

// ListActiveDropCampaigns returns ACTIVE campaigns that end after now, soonest ending first.
func (q *Queries) ListActiveDropCampaigns(ctx context.Context, now time.Time) ([]DropCampaign, error) {
	rows, err := q.db.QueryContext(ctx, listActiveDropCampaigns, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DropCampaign
	for rows.Next() {
		i, err := scanDropCampaign(rows)
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

const countDropCampaigns = `-- name: CountDropCampaigns :one
select count(*) from drop_campaign
`

func (q *Queries) CountDropCampaigns(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countDropCampaigns)
	var count int64
	err := row.Scan(&count)
	return count, err
}
