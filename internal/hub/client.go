// Package hub implements the HTTP client for the Home Assistant REST API.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hearth-io/hearth/internal/config"
	"github.com/hearth-io/hearth/internal/models"
)

const (
	requestTimeout = 10 * time.Second

	notificationDomain = "persistent_notification"
)

// Client issues authenticated calls against the hub REST API. It applies the
// configured base URL, bearer token, and proxy to every request and maps
// failures to typed errors. Retry policy belongs to callers; this layer never
// retries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     zerolog.Logger
}

// New builds a client from the connection settings in cfg.
func New(cfg *models.Config, log zerolog.Logger) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	proxyURL, err := config.ProxyURL(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		http: &http.Client{
			Timeout:   requestTimeout,
			Transport: transport,
		},
		log: log.With().Str("component", "hub").Logger(),
	}, nil
}

// Validate confirms the hub is reachable and the token is accepted.
func (c *Client) Validate(ctx context.Context) error {
	var out struct {
		Version string `json:"version"`
	}
	return c.getJSON(ctx, "validate", "/api/config", &out)
}

// stateObject is the wire shape of one entry in /api/states.
type stateObject struct {
	EntityID    string `json:"entity_id"`
	State       string `json:"state"`
	LastUpdated string `json:"last_updated"`
	Attributes  struct {
		FriendlyName  string `json:"friendly_name"`
		Icon          string `json:"icon"`
		EntityPicture string `json:"entity_picture"`
		Title         string `json:"title"`
		Message       string `json:"message"`
	} `json:"attributes"`
}

// FetchEntities returns a snapshot of every entity the hub exposes.
// Admin notifications are carried as entities too and are filtered out here;
// FetchNotifications is their read path.
func (c *Client) FetchEntities(ctx context.Context) ([]models.EntitySnapshot, error) {
	const op = "fetch entities"

	var states []stateObject
	if err := c.getJSON(ctx, op, "/api/states", &states); err != nil {
		return nil, err
	}

	entities := make([]models.EntitySnapshot, 0, len(states))
	for _, state := range states {
		if state.EntityID == "" {
			continue
		}
		if strings.HasPrefix(state.EntityID, notificationDomain+".") {
			continue
		}
		entities = append(entities, snapshotFrom(state))
	}
	return entities, nil
}

// CallService invokes a hub service for the given entity.
func (c *Client) CallService(ctx context.Context, domain, service, entityID string) error {
	op := fmt.Sprintf("call %s.%s", domain, service)
	path := fmt.Sprintf("/api/services/%s/%s", domain, service)
	return c.postJSON(ctx, op, path, map[string]string{"entity_id": entityID}, nil)
}

// FetchNotifications returns the hub's current admin notifications.
func (c *Client) FetchNotifications(ctx context.Context) ([]models.Notification, error) {
	const op = "fetch notifications"

	var states []stateObject
	if err := c.getJSON(ctx, op, "/api/states", &states); err != nil {
		return nil, err
	}

	var notifications []models.Notification
	for _, state := range states {
		id, ok := strings.CutPrefix(state.EntityID, notificationDomain+".")
		if !ok || id == "" {
			continue
		}
		title := state.Attributes.Title
		if title == "" {
			title = "Home Assistant"
		}
		notifications = append(notifications, models.Notification{
			NotificationID: id,
			Title:          title,
			Message:        state.Attributes.Message,
			CreatedAt:      parseHubTime(state.LastUpdated),
		})
	}
	return notifications, nil
}

// CreateNotification asks the hub to emit an admin notification. Used by the
// "send test notification" flow; the notification comes back through the
// regular poll path.
func (c *Client) CreateNotification(ctx context.Context, title, message, notificationID string) error {
	const op = "create notification"
	path := fmt.Sprintf("/api/services/%s/create", notificationDomain)
	return c.postJSON(ctx, op, path, map[string]string{
		"title":           title,
		"message":         message,
		"notification_id": notificationID,
	}, nil)
}

// PushSensorState publishes one agent telemetry reading as a sensor state.
func (c *Client) PushSensorState(ctx context.Context, entityID, state string, attributes map[string]any) error {
	op := fmt.Sprintf("push %s", entityID)
	path := "/api/states/" + entityID
	body := map[string]any{"state": state}
	if len(attributes) > 0 {
		body["attributes"] = attributes
	}
	return c.postJSON(ctx, op, path, body, nil)
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	return c.do(op, req, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindMalformed, Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("%s", strings.TrimSpace(string(snippet)))

		kind := KindServer
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = KindAuth
		}
		c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Msg("hub request failed")
		return &Error{Kind: kind, Op: op, Status: resp.StatusCode, Err: err}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindMalformed, Op: op, Err: err}
	}
	return nil
}

func snapshotFrom(state stateObject) models.EntitySnapshot {
	name := state.Attributes.FriendlyName
	if name == "" {
		name = state.EntityID
	}

	icon := state.Attributes.Icon
	if icon == "" {
		icon = state.Attributes.EntityPicture
	}
	if icon == "" {
		icon = models.DomainIcon(state.EntityID)
	}

	return models.EntitySnapshot{
		EntityID:     state.EntityID,
		FriendlyName: name,
		State:        state.State,
		Icon:         icon,
		LastUpdated:  parseHubTime(state.LastUpdated),
	}
}

func parseHubTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, format := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(format, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
