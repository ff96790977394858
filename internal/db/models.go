package db

import "database/sql"

// History is one navigation event. Rows are append-only.
type History struct {
	ID         int64
	URL        string
	Title      sql.NullString
	VisitTime  int64
	Screenshot sql.NullString
}

// AIMessage is one /api/ai/command exchange.
type AIMessage struct {
	ID        int64
	Message   string
	Reply     string
	Action    sql.NullString
	PageURL   string
	Provider  string
	Model     string
	CreatedAt int64
}
