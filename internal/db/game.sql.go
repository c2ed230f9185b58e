package db

import (
	"context"
)

const getGame = `-- name: GetGame :one
select twitch_id, name, slug, box_art_url, game_url, owner_id, created_at, modified_at from game
where twitch_id = ?
`

func (q *Queries) GetGame(ctx context.Context, twitchID string) (Game, error) {
	row := q.db.QueryRowContext(ctx, getGame, twitchID)
	var i Game
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.Slug,
		&i.BoxArtUrl,
		&i.GameUrl,
		&i.OwnerID,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const createGame = `-- name: CreateGame :exec
insert into game (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateGame(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createGame, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateGame = `-- name: UpdateGame :exec
update game set
    name = ?,
    slug = ?,
    box_art_url = ?,
    game_url = ?,
    owner_id = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateGame(ctx context.Context, arg Game) error {
	_, err := q.db.ExecContext(ctx, updateGame,
		arg.Name,
		arg.Slug,
		arg.BoxArtUrl,
		arg.GameUrl,
		arg.OwnerID,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const listGames = `-- name: ListGames :many
select twitch_id, name, slug, box_art_url, game_url, owner_id, created_at, modified_at from game
order by name, twitch_id
`

func (q *Queries) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listGames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Game
	for rows.Next() {
		var i Game
		if err := rows.Scan(
			&i.TwitchID,
			&i.Name,
			&i.Slug,
			&i.BoxArtUrl,
			&i.GameUrl,
			&i.OwnerID,
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
