package ai

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kaptinlin/jsonrepair"

	"github.com/neboloop/browserpilot/internal/db"
	"github.com/neboloop/browserpilot/internal/digest"
	"github.com/neboloop/browserpilot/internal/logging"
	"github.com/neboloop/browserpilot/internal/types"
)

const defaultCacheSize = 128

// suggestable are the actions the model may propose. evaluate is left out so
// the model never gets to run script in the page.
var suggestable = map[string]bool{
	"navigate": true,
	"click":    true,
	"type":     true,
	"scroll":   true,
	"back":     true,
	"forward":  true,
	"reload":   true,
}

// MessageStore persists assistant exchanges.
type MessageStore interface {
	AddAIMessage(ctx context.Context, arg db.AddAIMessageParams) (db.AIMessage, error)
}

// Observer is told about every provider call.
type Observer func(provider string, elapsed time.Duration, err error)

// Assistant answers /api/ai/command requests.
type Assistant struct {
	provider  Provider
	store     MessageStore
	cache     *lru.Cache[string, types.ChatResponse]
	observer  Observer
	maxTokens int
	digest    digest.Options
	now       func() time.Time
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant)

func WithMessageStore(s MessageStore) AssistantOption {
	return func(a *Assistant) { a.store = s }
}

func WithObserver(o Observer) AssistantOption {
	return func(a *Assistant) { a.observer = o }
}

// WithCacheSize sets the reply cache size; 0 keeps the default and a
// negative size disables caching.
func WithCacheSize(n int) AssistantOption {
	return func(a *Assistant) {
		if n < 0 {
			a.cache = nil
			return
		}
		if n > 0 {
			a.cache, _ = lru.New[string, types.ChatResponse](n)
		}
	}
}

func WithMaxTokens(n int) AssistantOption {
	return func(a *Assistant) { a.maxTokens = n }
}

// WithDigestOptions bounds the page digest appended to the prompt.
func WithDigestOptions(o digest.Options) AssistantOption {
	return func(a *Assistant) { a.digest = o }
}

// NewAssistant wraps provider.
func NewAssistant(provider Provider, opts ...AssistantOption) *Assistant {
	cache, _ := lru.New[string, types.ChatResponse](defaultCacheSize)
	a := &Assistant{
		provider:  provider,
		cache:     cache,
		maxTokens: defaultMaxTokens,
		now:       time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Provider returns the wrapped provider.
func (a *Assistant) Provider() Provider {
	return a.provider
}

// Command asks the model for a reply and an optional next action.
func (a *Assistant) Command(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, &types.ValidationError{Field: "message", Message: "is required"}
	}
	page := req.Context
	if page == nil {
		page = &types.BrowserState{}
	}

	key := cacheKey(req.Message, page.Url, page.Title)
	if a.cache != nil {
		if cached, ok := a.cache.Get(key); ok {
			resp := cached
			a.logExchange(ctx, req.Message, page.Url, &resp)
			return &resp, nil
		}
	}

	start := time.Now()
	raw, err := a.provider.Complete(ctx, &CompletionRequest{
		Prompt:    a.buildPrompt(req.Message, page),
		MaxTokens: a.maxTokens,
	})
	if a.observer != nil {
		a.observer(a.provider.ID(), time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	resp := ParseReply(raw)
	if a.cache != nil {
		a.cache.Add(key, *resp)
	}
	a.logExchange(ctx, req.Message, page.Url, resp)
	return resp, nil
}

func cacheKey(message, url, title string) string {
	return message + "\x00" + url + "\x00" + title
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func (a *Assistant) buildPrompt(message string, page *types.BrowserState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are controlling a browser.\n")
	fmt.Fprintf(&b, "Current URL: %s\n", orNone(page.Url))
	fmt.Fprintf(&b, "Current Title: %s\n", orNone(page.Title))
	fmt.Fprintf(&b, "User Request: %q\n\n", message)
	b.WriteString(`Determine the next best action.
Return a JSON object with:
- message: A short response to the user.
- action: (Optional) The action to perform.
  - action: "navigate" | "click" | "type" | "scroll" | "back" | "forward" | "reload"
  - url: (if navigate)
  - selector: (if click/type)
  - text: (if type)
  - x, y: (if click without a selector)
`)

	if page.Html != "" {
		d, err := digest.Build(page.Html, page.Url, a.digest)
		if err != nil {
			logging.Warnf("page digest failed: %v", err)
		} else if s := d.String(); s != "" {
			b.WriteString("\n")
			b.WriteString(s)
		}
	}
	return b.String()
}

// ParseReply decodes a model reply into a ChatResponse. Malformed JSON is
// repaired when possible; otherwise the raw text becomes the message.
// Suggested actions that are not allowed or fail validation are dropped.
func ParseReply(raw string) *types.ChatResponse {
	text := stripFences(raw)

	var reply struct {
		Message string          `json:"message"`
		Action  json.RawMessage `json:"action"`
	}
	if err := json.Unmarshal([]byte(text), &reply); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(text)
		if rerr != nil || json.Unmarshal([]byte(repaired), &reply) != nil {
			logging.Debugf("unparseable ai reply: %v", err)
			return &types.ChatResponse{Message: strings.TrimSpace(raw)}
		}
	}

	resp := &types.ChatResponse{Message: reply.Message}
	resp.Action = parseAction(reply.Action)
	return resp
}

func parseAction(raw json.RawMessage) *types.BrowserActionRequest {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var action types.BrowserActionRequest
	if err := json.Unmarshal(raw, &action); err != nil {
		logging.Debugf("dropping ai action: %v", err)
		return nil
	}
	if !suggestable[action.Action] {
		logging.Debugf("dropping ai action %q", action.Action)
		return nil
	}
	if err := types.Validate(&action); err != nil {
		logging.Debugf("dropping ai action: %v", err)
		return nil
	}
	return &action
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// logExchange appends the exchange to the store. Failures are logged only.
func (a *Assistant) logExchange(ctx context.Context, message, pageURL string, resp *types.ChatResponse) {
	if a.store == nil {
		return
	}
	var action sql.NullString
	if resp.Action != nil {
		if b, err := json.Marshal(resp.Action); err == nil {
			action = sql.NullString{String: string(b), Valid: true}
		}
	}
	_, err := a.store.AddAIMessage(ctx, db.AddAIMessageParams{
		Message:   message,
		Reply:     resp.Message,
		Action:    action,
		PageURL:   pageURL,
		Provider:  a.provider.ID(),
		Model:     a.provider.Model(),
		CreatedAt: a.now().Unix(),
	})
	if err != nil {
		logging.Warnf("failed to log ai exchange: %v", err)
	}
}
