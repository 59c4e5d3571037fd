package minishop

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/source"
)

// Action names used in ActionError values.
const (
	ActionMarkRead    = "mark read"
	ActionMarkAllRead = "mark all read"
	ActionCreateTest  = "create test notification"
)

// Adapter implements source.Source for the shop's notifications service.
type Adapter struct {
	client *Client
}

var _ source.Source = (*Adapter)(nil)

// NewAdapter creates an adapter talking to baseURL with an optional
// Bearer token.
func NewAdapter(baseURL, token string, opts ...Option) *Adapter {
	return &Adapter{
		client: NewClient(baseURL, token, opts...),
	}
}

// ValidateConnection verifies connectivity by reading the stats endpoint.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	stats, err := a.FetchStats(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Connected to %s: %d notifications, %d unread",
		a.client.BaseURL(), stats.Total, stats.Unread,
	), nil
}

// FetchSnapshot reads GET /recent?limit=N.
func (a *Adapter) FetchSnapshot(ctx context.Context, limit int) ([]model.Notification, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var raw []Notification
	if err := a.client.Get(ctx, "/recent", query, &raw); err != nil {
		return nil, &source.FetchError{Op: "recent", Status: statusOf(err), Cause: err}
	}

	items := make([]model.Notification, 0, len(raw))
	for _, n := range raw {
		items = append(items, n.toModel())
	}
	return items, nil
}

// FetchStats reads GET /stats.
func (a *Adapter) FetchStats(ctx context.Context) (model.Stats, error) {
	var raw StatsResponse
	if err := a.client.Get(ctx, "/stats", nil, &raw); err != nil {
		return model.Stats{}, &source.FetchError{Op: "stats", Status: statusOf(err), Cause: err}
	}
	return raw.toModel(), nil
}

// MarkRead issues PUT /{id}/read. Any 2xx reply succeeds; the body is ignored.
func (a *Adapter) MarkRead(ctx context.Context, id string) error {
	if err := a.client.Put(ctx, "/"+url.PathEscape(id)+"/read", nil); err != nil {
		return &source.ActionError{Action: ActionMarkRead, Status: statusOf(err), Cause: err}
	}
	return nil
}

// MarkAllRead issues PUT /read-all.
func (a *Adapter) MarkAllRead(ctx context.Context) error {
	if err := a.client.Put(ctx, "/read-all", nil); err != nil {
		return &source.ActionError{Action: ActionMarkAllRead, Status: statusOf(err), Cause: err}
	}
	return nil
}

// CreateTest issues POST /test with a form-encoded body and returns the
// notification the server created.
func (a *Adapter) CreateTest(
	ctx context.Context,
	n model.TestNotification,
) (*model.Notification, error) {
	form := url.Values{}
	form.Set("type", n.Type)
	form.Set("title", n.Title)
	form.Set("message", n.Message)
	form.Set("severity", string(n.Severity))

	var raw Notification
	if err := a.client.PostForm(ctx, "/test", form, &raw); err != nil {
		return nil, &source.ActionError{Action: ActionCreateTest, Status: statusOf(err), Cause: err}
	}

	created := raw.toModel()
	return &created, nil
}
