package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/neboloop/browserpilot/internal/db"
	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/svc"
	"github.com/neboloop/browserpilot/internal/types"
)

const (
	defaultMessagesLimit = 50
	maxMessagesLimit     = 500
)

type ListMessagesLogic struct {
	logging.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

// List logged assistant exchanges, newest first
func NewListMessagesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListMessagesLogic {
	return &ListMessagesLogic{
		Logger: logging.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListMessagesLogic) ListMessages(req *types.ListAIMessagesRequest) ([]types.AIMessage, error) {
	if l.svcCtx.DB == nil {
		return nil, svc.ErrNoDatabase
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultMessagesLimit
	}
	if limit > maxMessagesLimit {
		limit = maxMessagesLimit
	}

	rows, err := l.svcCtx.DB.ListAIMessages(l.ctx, int64(limit))
	if err != nil {
		l.Errorf("Failed to list ai messages: %v", err)
		return nil, err
	}

	out := make([]types.AIMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, toMessage(row))
	}
	return out, nil
}

func toMessage(row db.AIMessage) types.AIMessage {
	m := types.AIMessage{
		Id:        row.ID,
		Message:   row.Message,
		Reply:     row.Reply,
		PageUrl:   row.PageURL,
		Provider:  row.Provider,
		Model:     row.Model,
		CreatedAt: time.Unix(row.CreatedAt, 0).UTC().Format(time.RFC3339),
	}
	if row.Action.Valid && row.Action.String != "" {
		var action types.BrowserActionRequest
		if err := json.Unmarshal([]byte(row.Action.String), &action); err == nil {
			m.Action = &action
		}
	}
	return m
}
