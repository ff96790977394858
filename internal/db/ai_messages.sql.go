package db

import (
	"context"
	"database/sql"
)

const addAIMessage = `-- name: AddAIMessage :one
INSERT INTO ai_messages (message, reply, action, page_url, provider, model, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id, message, reply, action, page_url, provider, model, created_at
`

type AddAIMessageParams struct {
	Message   string
	Reply     string
	Action    sql.NullString
	PageURL   string
	Provider  string
	Model     string
	CreatedAt int64
}

func (q *Queries) AddAIMessage(ctx context.Context, arg AddAIMessageParams) (AIMessage, error) {
	row := q.db.QueryRowContext(ctx, addAIMessage,
		arg.Message,
		arg.Reply,
		arg.Action,
		arg.PageURL,
		arg.Provider,
		arg.Model,
		arg.CreatedAt,
	)
	var i AIMessage
	err := row.Scan(
		&i.ID,
		&i.Message,
		&i.Reply,
		&i.Action,
		&i.PageURL,
		&i.Provider,
		&i.Model,
		&i.CreatedAt,
	)
	return i, err
}

const listAIMessages = `-- name: ListAIMessages :many
SELECT id, message, reply, action, page_url, provider, model, created_at
FROM ai_messages
ORDER BY created_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListAIMessages(ctx context.Context, limit int64) ([]AIMessage, error) {
	rows, err := q.db.QueryContext(ctx, listAIMessages, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AIMessage{}
	for rows.Next() {
		var i AIMessage
		if err := rows.Scan(
			&i.ID,
			&i.Message,
			&i.Reply,
			&i.Action,
			&i.PageURL,
			&i.Provider,
			&i.Model,
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
