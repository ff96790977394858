package history

import (
	"context"
	"time"

	"github.com/neboloop/browserpilot/internal/db"
	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

type ListHistoryLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// List visited pages, newest first
func NewListHistoryLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListHistoryLogic {
	return &ListHistoryLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListHistoryLogic) ListHistory() ([]types.HistoryEntry, error) {
	if l.svcCtx.DB == nil {
		return nil, svc.ErrNoDatabase
	}
	rows, err := l.svcCtx.DB.ListHistory(l.ctx)
	if err != nil {
		l.Errorf("Failed to list history: %v", err)
		return nil, err
	}
	out := make([]types.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToEntry(row))
	}
	return out, nil
}

// ToEntry converts a history row to its JSON shape.
func ToEntry(row db.History) types.HistoryEntry {
	e := types.HistoryEntry{
		Id:        row.ID,
		Url:       row.URL,
		VisitTime: time.Unix(row.VisitTime, 0).UTC().Format(time.RFC3339),
	}
	if row.Title.Valid {
		t := row.Title.String
		e.Title = &t
	}
	if row.Screenshot.Valid {
		s := row.Screenshot.String
		e.Screenshot = &s
	}
	return e
}
