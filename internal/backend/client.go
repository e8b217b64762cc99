package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/quiniela-client/internal/metrics"
)

const maxErrorBody = 64 << 10

// APIClient talks to the Quiniela REST backend. It implements Client.
type APIClient struct {
	httpClient *http.Client
	metrics    metrics.Metrics
	BaseURL    string
}

// NewClient creates a backend client with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration, m metrics.Metrics) *APIClient {
	return &APIClient{
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		BaseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Ensure APIClient implements the Client interface.
var _ Client = (*APIClient)(nil)

// Register creates an account and returns its identifier.
func (c *APIClient) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp userIDResponse
	if err := c.do(ctx, "register", http.MethodPost, "/api/accounts/register/", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return req.UserID, nil
	}
	return resp.UserID, nil
}

// Login checks credentials and returns the identity to persist.
func (c *APIClient) Login(ctx context.Context, userID, password string) (string, error) {
	var resp userIDResponse
	err := c.do(ctx, "login", http.MethodPost, "/api/accounts/login/", nil, loginRequest{UserID: userID, Password: password}, &resp)
	if err != nil {
		var be *Error
		if errors.As(err, &be) && be.Kind == KindValidation {
			// The backend answers bad credentials with a 400.
			be.Kind = KindAuthentication
		}
		return "", err
	}
	if resp.UserID == "" {
		log.Warn("Login response carried no user_id, keeping the submitted identifier", "userID", userID)
		return userID, nil
	}
	return resp.UserID, nil
}

func (c *APIClient) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return c.do(ctx, "update-profile", http.MethodPost, "/api/accounts/update-profile/", nil, update, nil)
}

func (c *APIClient) GetTickets(ctx context.Context, userID string) (int, error) {
	var resp ticketsResponse
	q := url.Values{"user_id": {userID}}
	if err := c.do(ctx, "tickets", http.MethodGet, "/api/accounts/tickets/", q, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Tickets, nil
}

// SpendTicket enters the user into an event. Any refusal that is not an
// authentication or transport problem is reported as insufficient tickets.
func (c *APIClient) SpendTicket(ctx context.Context, userID string, eventID int) (SpendResult, error) {
	var resp spendTicketResponse
	err := c.do(ctx, "use-ticket", http.MethodPost, "/api/accounts/use-ticket/", nil, spendTicketRequest{UserID: userID, EventID: eventID}, &resp)
	if err != nil {
		var be *Error
		if errors.As(err, &be) && (be.Kind == KindValidation || be.Kind == KindConflict) && be.Reason == ReasonNone {
			be.Kind, be.Reason = KindConflict, ReasonInsufficientTickets
		}
		return SpendResult{}, err
	}
	return SpendResult{Remaining: resp.Tickets}, nil
}

// CurrentEvent fetches the live event. A 404 means there is no active event.
func (c *APIClient) CurrentEvent(ctx context.Context) (Event, error) {
	var resp eventResponse
	if err := c.do(ctx, "current-event", http.MethodGet, "/eventos/api/current-event/", nil, nil, &resp); err != nil {
		return Event{}, err
	}
	if resp.ID == 0 {
		return Event{}, &Error{Kind: KindNotFound, Message: "no active event"}
	}
	return resp.toEvent(), nil
}

func (c *APIClient) CheckParticipation(ctx context.Context, userID string, eventID int) (bool, error) {
	var resp participationResponse
	q := url.Values{"user_id": {userID}, "event_id": {strconv.Itoa(eventID)}}
	if err := c.do(ctx, "check-participation", http.MethodGet, "/eventos/api/check-participation/", q, nil, &resp); err != nil {
		return false, err
	}
	return resp.Participated, nil
}

func (c *APIClient) HasSubmitted(ctx context.Context, userID string, eventID int) (bool, error) {
	var resp submissionStatusResponse
	q := url.Values{"user_id": {userID}, "event_id": {strconv.Itoa(eventID)}}
	if err := c.do(ctx, "check-submission", http.MethodGet, "/eventos/api/check-submission/", q, nil, &resp); err != nil {
		return false, err
	}
	switch {
	case resp.HasSubmitted != nil:
		return *resp.HasSubmitted, nil
	case resp.HasSubmittedCamel != nil:
		return *resp.HasSubmittedCamel, nil
	}
	return false, &Error{Kind: KindUnknown, Message: "submission status missing from response"}
}

func (c *APIClient) SubmitPredictions(ctx context.Context, userID string, eventID int, predictions []Prediction) (SubmitResult, error) {
	var resp submitResponse
	body := submitRequest{UserID: userID, EventID: eventID, Predictions: predictions}
	if err := c.do(ctx, "submit-predictions", http.MethodPost, "/eventos/api/submit-predictions/", nil, body, &resp); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{TotalPoints: resp.TotalPoints}, nil
}

func (c *APIClient) UserResults(ctx context.Context, userID string) (UserResults, error) {
	var resp resultsResponse
	q := url.Values{"user_id": {userID}}
	if err := c.do(ctx, "user-results", http.MethodGet, "/eventos/api/user-results/", q, nil, &resp); err != nil {
		return UserResults{}, err
	}
	out := UserResults{
		Visible:     resp.ResultsVisible,
		TotalPoints: resp.TotalPoints,
		Entries:     make([]ResultEntry, 0, len(resp.PredictionResults)),
	}
	for _, r := range resp.PredictionResults {
		entry := ResultEntry{
			MatchID: r.PeleaID,
			SideOne: r.Equipo1,
			SideTwo: r.Equipo2,
			Choice:  parseOutcome(r.Prediccion),
			Correct: r.Correct,
		}
		if r.Resultado != nil {
			entry.Outcome = parseOutcome(*r.Resultado)
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func (c *APIClient) Rankings(ctx context.Context, eventID int) ([]RankingEntry, error) {
	var resp rankingsResponse
	path := fmt.Sprintf("/eventos/api/rankings/%d/", eventID)
	if err := c.do(ctx, "rankings", http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	out := make([]RankingEntry, 0, len(resp.Rankings))
	for _, r := range resp.Rankings {
		out = append(out, RankingEntry{User: r.User, Points: r.Points})
	}
	return out, nil
}

// do performs one JSON round trip. Every failure comes back as *Error.
func (c *APIClient) do(ctx context.Context, endpoint, method, path string, query url.Values, in, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.metrics == nil {
			return
		}
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = strings.ToLower(string(KindOf(err)))
		}
		c.metrics.ObserveBackendRequest(endpoint, outcome, time.Since(start).Seconds())
	}()

	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "failed to encode request", Err: err}
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &Error{Kind: KindUnknown, Message: "failed to create request", Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log.Debug("Calling backend", "method", method, "url", u, "requestID", requestID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Message: "could not reach the server", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		be := newHTTPError(resp.StatusCode, raw)
		log.Debug("Backend returned an error", "endpoint", endpoint, "status", resp.StatusCode, "kind", be.Kind, "requestID", requestID)
		return be
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: "empty response"}
		}
		if ctx.Err() != nil || isTimeout(err) {
			return &Error{Kind: KindTransport, Message: "response interrupted", Err: err}
		}
		return &Error{Kind: KindUnknown, Status: resp.StatusCode, Message: "failed to decode response", Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
