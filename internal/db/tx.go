package db

import (
	"context"
	"database/sql"
	"errors"
)

// MakeTx begins a transaction. Discard is safe to defer, it does nothing once commit went through.
type MakeTx = func(ctx context.Context) (tx *Queries, discard, commit func() error, err error)

func NewMakeTx(database *sql.DB) MakeTx {
	return func(ctx context.Context) (*Queries, func() error, func() error, error) {
		sqlTx, err := database.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		discard := func() error {
			err := sqlTx.Rollback()
			if errors.Is(err, sql.ErrTxDone) {
				return nil
			}
			return err
		}
		return New(sqlTx), discard, sqlTx.Commit, nil
	}
}

// InTx runs fn in a transaction that is committed when fn returns nil.
func InTx(ctx context.Context, makeTx MakeTx, fn func(tx *Queries) error) error {
	tx, discard, commit, err := makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = fn(tx)
	if err != nil {
		return err
	}
	return commit()
}
