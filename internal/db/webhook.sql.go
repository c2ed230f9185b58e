package db

import (
	"context"
	"time"
)

const createWebhook = `-- name: CreateWebhook :one
insert into webhook (kind, target, name, created_at)
values (?, ?, ?, ?)
on conflict (kind, target) do update set name = excluded.name
returning id
`

type CreateWebhookParams struct {
	Kind      WebhookKind
	Target    string
	Name      string
	CreatedAt time.Time
}

// CreateWebhook returns the id of the webhook, registering the same target twice renames it.
func (q *Queries) CreateWebhook(ctx context.Context, arg CreateWebhookParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createWebhook,
		arg.Kind,
		arg.Target,
		arg.Name,
		arg.CreatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listWebhooks = `-- name: ListWebhooks :many
select id, kind, target, name, created_at from webhook
order by id
`

func (q *Queries) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	return q.queryWebhooks(ctx, listWebhooks)
}

const deleteWebhook = `-- name: DeleteWebhook :execrows
delete from webhook where id = ?
`

func (q *Queries) DeleteWebhook(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteWebhook, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteGameSubscriptionsByWebhook = `-- name: DeleteGameSubscriptionsByWebhook :exec
delete from game_subscription where webhook_id = ?
`

func (q *Queries) DeleteGameSubscriptionsByWebhook(ctx context.Context, webhookID int64) error {
	_, err := q.db.ExecContext(ctx, deleteGameSubscriptionsByWebhook, webhookID)
	return err
}

const deleteOwnerSubscriptionsByWebhook = `-- name: DeleteOwnerSubscriptionsByWebhook :exec
delete from owner_subscription where webhook_id = ?
`

func (q *Queries) DeleteOwnerSubscriptionsByWebhook(ctx context.Context, webhookID int64) error {
	_, err := q.db.ExecContext(ctx, deleteOwnerSubscriptionsByWebhook, webhookID)
	return err
}

const createGameSubscription = `-- name: CreateGameSubscription :exec
insert into game_subscription (webhook_id, game_id)
values (?, ?)
on conflict do nothing
`

type CreateGameSubscriptionParams struct {
	WebhookID int64
	GameID    string
}

func (q *Queries) CreateGameSubscription(ctx context.Context, arg CreateGameSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, createGameSubscription, arg.WebhookID, arg.GameID)
	return err
}

const createOwnerSubscription = `-- name: CreateOwnerSubscription :exec
insert into owner_subscription (webhook_id, owner_id)
values (?, ?)
on conflict do nothing
`

type CreateOwnerSubscriptionParams struct {
	WebhookID int64
	OwnerID   string
}

func (q *Queries) CreateOwnerSubscription(ctx context.Context, arg CreateOwnerSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, createOwnerSubscription, arg.WebhookID, arg.OwnerID)
	return err
}

const listGameSubscribers = `-- name: ListGameSubscribers :many
select w.id, w.kind, w.target, w.name, w.created_at from webhook w
join game_subscription s on s.webhook_id = w.id
where s.game_id = ?
order by w.id
`

func (q *Queries) ListGameSubscribers(ctx context.Context, gameID string) ([]Webhook, error) {
	return q.queryWebhooks(ctx, listGameSubscribers, gameID)
}

const listOwnerSubscribers = `-- name: ListOwnerSubscribers :many
select w.id, w.kind, w.target, w.name, w.created_at from webhook w
join owner_subscription s on s.webhook_id = w.id
where s.owner_id = ?
order by w.id
`

func (q *Queries) ListOwnerSubscribers(ctx context.Context, ownerID string) ([]Webhook, error) {
	return q.queryWebhooks(ctx, listOwnerSubscribers, ownerID)
}

func (q *Queries) queryWebhooks(ctx context.Context, query string, args ...any) ([]Webhook, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Webhook
	for rows.Next() {
		var i Webhook
		if err := rows.Scan(
			&i.ID,
			&i.Kind,
			&i.Target,
			&i.Name,
			&i.CreatedAt,
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
