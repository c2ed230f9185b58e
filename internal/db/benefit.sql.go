package db

import (
	"context"
	"database/sql"
)

const benefitColumns = `twitch_id, name, image_url, entitlement_limit, is_ios_available, twitch_created_at, time_based_drop_id, owner_id, created_at, modified_at`

func scanBenefit(row rowScanner) (Benefit, error) {
	var i Benefit
	err := row.Scan(
		&i.TwitchID,
		&i.Name,
		&i.ImageUrl,
		&i.EntitlementLimit,
		&i.IsIosAvailable,
		&i.TwitchCreatedAt,
		&i.TimeBasedDropID,
		&i.OwnerID,
		&i.CreatedAt,
		&i.ModifiedAt,
	)
	return i, err
}

const getBenefit = `-- name: GetBenefit :one
select ` + benefitColumns + ` from benefit
where twitch_id = ?
`

func (q *Queries) GetBenefit(ctx context.Context, twitchID string) (Benefit, error) {
	return scanBenefit(q.db.QueryRowContext(ctx, getBenefit, twitchID))
}

const createBenefit = `-- name: CreateBenefit :exec
insert into benefit (twitch_id, created_at, modified_at)
values (?, ?, ?)
on conflict (twitch_id) do nothing
`

func (q *Queries) CreateBenefit(ctx context.Context, arg CreateParams) error {
	_, err := q.db.ExecContext(ctx, createBenefit, arg.TwitchID, arg.CreatedAt, arg.CreatedAt)
	return err
}

const updateBenefit = `-- name: UpdateBenefit :exec
update benefit set
    name = ?,
    image_url = ?,
    entitlement_limit = ?,
    is_ios_available = ?,
    twitch_created_at = ?,
    time_based_drop_id = ?,
    owner_id = ?,
    modified_at = ?
where twitch_id = ?
`

func (q *Queries) UpdateBenefit(ctx context.Context, arg Benefit) error {
	_, err := q.db.ExecContext(ctx, updateBenefit,
		arg.Name,
		arg.ImageUrl,
		arg.EntitlementLimit,
		arg.IsIosAvailable,
		arg.TwitchCreatedAt,
		arg.TimeBasedDropID,
		arg.OwnerID,
		arg.ModifiedAt,
		arg.TwitchID,
	)
	return err
}

const listBenefitsByDrop = `-- name: ListBenefitsByDrop :many
select ` + benefitColumns + ` from benefit
where time_based_drop_id = ?
order by name, twitch_id
`

func (q *Queries) ListBenefitsByDrop(ctx context.Context, timeBasedDropID sql.NullString) ([]Benefit, error) {
	rows, err := q.db.QueryContext(ctx, listBenefitsByDrop, timeBasedDropID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Benefit
	for rows.Next() {
		i, err := scanBenefit(rows)
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
