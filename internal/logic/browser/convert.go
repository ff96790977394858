package browser

import (
	"errors"
	"strings"

	"github.com/neboloop/browserpilot/internal/browser"
	"github.com/neboloop/browserpilot/internal/types"
)

func toAction(req *types.BrowserActionRequest) browser.Action {
	return browser.Action{
		Name:     req.Action,
		URL:      req.Url,
		Selector: req.Selector,
		Text:     req.Text,
		X:        req.X,
		Y:        req.Y,
		Script:   req.Script,
	}
}

// ToState converts a manager snapshot to the response shape.
func ToState(s *browser.State) *types.BrowserState {
	if s == nil {
		return &types.BrowserState{}
	}
	return &types.BrowserState{
		Url:        s.URL,
		Title:      s.Title,
		Screenshot: s.Screenshot,
		Html:       s.HTML,
		IsLoading:  s.IsLoading,
		Result:     s.Result,
	}
}

// actionError turns a rejected action into a 400.
func actionError(err error) error {
	if !errors.Is(err, browser.ErrInvalidAction) {
		return err
	}
	field := "action"
	if errors.Is(err, browser.ErrScriptRequired) {
		field = "script"
	}
	return &types.ValidationError{Field: field, Message: strings.TrimPrefix(err.Error(), browser.ErrInvalidAction.Error()+": ")}
}
