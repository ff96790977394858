package db

import (
	"context"
	"database/sql"
)

const addToHistory = `-- name: AddToHistory :one
INSERT INTO history (url, title, visit_time, screenshot)
VALUES (?, ?, ?, ?)
RETURNING id, url, title, visit_time, screenshot
`

type AddToHistoryParams struct {
	URL        string
	Title      sql.NullString
	VisitTime  int64
	Screenshot sql.NullString
}

func (q *Queries) AddToHistory(ctx context.Context, arg AddToHistoryParams) (History, error) {
	row := q.db.QueryRowContext(ctx, addToHistory,
		arg.URL,
		arg.Title,
		arg.VisitTime,
		arg.Screenshot,
	)
	var i History
	err := row.Scan(
		&i.ID,
		&i.URL,
		&i.Title,
		&i.VisitTime,
		&i.Screenshot,
	)
	return i, err
}

const listHistory = `-- name: ListHistory :many
SELECT id, url, title, visit_time, screenshot
FROM history
ORDER BY visit_time DESC, id DESC
`

func (q *Queries) ListHistory(ctx context.Context) ([]History, error) {
	rows, err := q.db.QueryContext(ctx, listHistory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []History{}
	for rows.Next() {
		var i History
		if err := rows.Scan(
			&i.ID,
			&i.URL,
			&i.Title,
			&i.VisitTime,
			&i.Screenshot,
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

const countHistory = `-- name: CountHistory :one
SELECT COUNT(*) FROM history
`

func (q *Queries) CountHistory(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countHistory)
	var count int64
	err := row.Scan(&count)
	return count, err
}
