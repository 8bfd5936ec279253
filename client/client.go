// Package client is a typed Go client for the community-serve REST
// API. Authentication state is an explicit Session passed to each
// call; nothing is held in package state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deepthiduddupudi31/community-serve/models"
)

// APIError is a non-2xx response decoded from the server's message body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to a community-serve server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL, e.g.
// "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// EventView is an event enriched with user summaries. The raw
// organizer and participant ids stay on the embedded Event.
type EventView struct {
	models.Event
	OrganizerInfo      *models.UserSummary  `json:"organizerInfo"`
	ParticipantDetails []models.UserSummary `json:"participantDetails"`
}

// Pagination describes a page of listing results.
type Pagination struct {
	Current int64 `json:"current"`
	Pages   int64 `json:"pages"`
	Total   int64 `json:"total"`
}

// EventPage is one page of the event listing.
type EventPage struct {
	Events     []EventView `json:"events"`
	Pagination Pagination  `json:"pagination"`
}

// ListOptions are the event listing filters.
type ListOptions struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type authResponse struct {
	Token string          `json:"token"`
	User  models.AuthView `json:"user"`
}

type userResponse struct {
	User models.User `json:"user"`
}

type eventResponse struct {
	Event EventView `json:"event"`
}

type eventsResponse struct {
	Events []EventView `json:"events"`
}

// Register creates an account and returns a ready session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &Session{Token: out.Token, User: out.User}, nil
}

// Login authenticates and returns a ready session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var out authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return &Session{Token: out.Token, User: out.User}, nil
}

// Me fetches the session owner's full profile.
func (c *Client) Me(ctx context.Context, sess *Session) (*models.User, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", sess, nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile applies a partial profile update. Fields map keys must
// be within the server's whitelist.
func (c *Client) UpdateProfile(ctx context.Context, sess *Session, fields map[string]any) (*models.User, error) {
	var out userResponse
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", sess, fields, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// CreateEvent creates an event organized by the session owner. The
// body mirrors the server's creation schema.
func (c *Client) CreateEvent(ctx context.Context, sess *Session, body map[string]any) (*EventView, error) {
	var out eventResponse
	if err := c.do(ctx, http.MethodPost, "/api/events", sess, body, &out); err != nil {
		return nil, err
	}
	return &out.Event, nil
}

// ListEvents fetches one page of published events.
func (c *Client) ListEvents(ctx context.Context, opts ListOptions) (*EventPage, error) {
	q := url.Values{}
	if opts.Category != "" {
		q.Set("category", opts.Category)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	path := "/api/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out EventPage
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetEvent fetches a single event.
func (c *Client) GetEvent(ctx context.Context, id string) (*EventView, error) {
	var out eventResponse
	if err := c.do(ctx, http.MethodGet, "/api/events/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Event, nil
}

// JoinEvent registers the session owner as a participant.
func (c *Client) JoinEvent(ctx context.Context, sess *Session, id string) error {
	return c.do(ctx, http.MethodPost, "/api/events/"+id+"/join", sess, nil, nil)
}

// LeaveEvent removes the session owner from the participants.
func (c *Client) LeaveEvent(ctx context.Context, sess *Session, id string) error {
	return c.do(ctx, http.MethodPost, "/api/events/"+id+"/leave", sess, nil, nil)
}

// OrganizedEvents lists events organized by the session owner.
func (c *Client) OrganizedEvents(ctx context.Context, sess *Session) ([]EventView, error) {
	var out eventsResponse
	if err := c.do(ctx, http.MethodGet, "/api/events/user/organized", sess, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// JoinedEvents lists events the session owner participates in.
func (c *Client) JoinedEvents(ctx context.Context, sess *Session) ([]EventView, error) {
	var out eventsResponse
	if err := c.do(ctx, http.MethodGet, "/api/events/user/joined", sess, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

func (c *Client) do(ctx context.Context, method, path string, sess *Session, in, out any) error {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		if msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
