package storage

import (
	"context"
)

type Preference struct {
	Key       string
	Value     string
	UpdatedAt string
}

const getPreference = `-- name: GetPreference :one
SELECT key, value, CAST(updated_at AS TEXT) FROM preferences
WHERE key = ?
`

func (q *Queries) GetPreference(ctx context.Context, key string) (Preference, error) {
	row := q.db.QueryRowContext(ctx, getPreference, key)
	var i Preference
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const upsertPreference = `-- name: UpsertPreference :exec
INSERT INTO preferences (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
`

type UpsertPreferenceParams struct {
	Key   string
	Value string
}

func (q *Queries) UpsertPreference(ctx context.Context, arg UpsertPreferenceParams) error {
	_, err := q.db.ExecContext(ctx, upsertPreference, arg.Key, arg.Value)
	return err
}

const listPreferences = `-- name: ListPreferences :many
SELECT key, value, CAST(updated_at AS TEXT) FROM preferences
ORDER BY key
`

func (q *Queries) ListPreferences(ctx context.Context) ([]Preference, error) {
	rows, err := q.db.QueryContext(ctx, listPreferences)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Preference
	for rows.Next() {
		var i Preference
		if err := rows.Scan(&i.Key, &i.Value, &i.UpdatedAt); err != nil {
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
