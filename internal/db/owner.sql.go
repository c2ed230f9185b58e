package db

import (
	"context"
	"time"
)

// CreateParams is shared by every Create* query, new rows only carry their key and timestamps.
type CreateParams struct {
	TwitchID  string
	CreatedAt time.Time
}

const getOwner = `-- name: GetOwner :one
select twitch_id, name, created_at, modified_at from owner
where twitch_id = ?
`

func (q *Queries) GetOwner(ctx context.Context, twitchID string) (Owner, error) {
	row := q.db.QueryRowContext(ctx, getOwner, twitchID)
	var i Owner
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const createOwner = `-- name: CreateOwner :exec
insert into owner (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateOwner(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createOwner, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateOwner = `-- name: UpdateOwner :exec
update owner set
    name = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateOwner(ctx context.Context, arg Owner) error {
	_, err := q.db.ExecContext(ctx, updateOwner,
		arg.Name,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const listOwners = `-- name: ListOwners :many
select twitch_id, name, created_at, modified_at from owner
order by name, twitch_id
`

func (q *Queries) ListOwners(ctx context.Context) ([]Owner, error) {
	rows, err := q.db.QueryContext(ctx, listOwners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Owner
	for rows.Next() {
		var i Owner
		if err := rows.Scan(
			&i.TwitchID,
			&i.Name,
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
