package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"fuel-planner/internal/schedule"
	"fuel-planner/internal/shared"
)

const stateTTL = 10 * time.Minute

// ErrInvalidState is returned when an OAuth callback carries a state that
// this server did not issue or that has expired.
var ErrInvalidState = errors.New("invalid oauth state")

// GoogleConfig holds the OAuth client registration for Calendar access.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	StateSecret  string
}

// GoogleImporter reads busy intervals from a Google Calendar.
type GoogleImporter struct {
	oauth       *oauth2.Config
	stateSecret []byte
	opts        []option.ClientOption
}

// NewGoogleImporter validates cfg. Extra client options are passed to the
// Calendar service on every import.
func NewGoogleImporter(cfg GoogleConfig, opts ...option.ClientOption) (*GoogleImporter, error) {
	switch {
	case cfg.ClientID == "":
		return nil, fmt.Errorf("%w: GOOGLE_CLIENT_ID environment variable not set", shared.ErrConfiguration)
	case cfg.ClientSecret == "":
		return nil, fmt.Errorf("%w: GOOGLE_CLIENT_SECRET environment variable not set", shared.ErrConfiguration)
	case cfg.RedirectURL == "":
		return nil, fmt.Errorf("%w: GOOGLE_REDIRECT_URL environment variable not set", shared.ErrConfiguration)
	case cfg.StateSecret == "":
		return nil, fmt.Errorf("%w: OAUTH_STATE_SECRET environment variable not set", shared.ErrConfiguration)
	}

	return &GoogleImporter{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{gcal.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		stateSecret: []byte(cfg.StateSecret),
		opts:        opts,
	}, nil
}

// AuthURL returns the consent URL and the signed state embedded in it.
func (g *GoogleImporter) AuthURL() (url string, state string, err error) {
	state, err = g.signState(time.Now())
	if err != nil {
		return "", "", err
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}

// Exchange verifies the callback state and trades the code for a token.
func (g *GoogleImporter) Exchange(ctx context.Context, code, state string) (*oauth2.Token, error) {
	if err := g.VerifyState(state); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code required", shared.ErrValidation)
	}
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

func (g *GoogleImporter) signState(now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   "google-calendar",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	})
	return token.SignedString(g.stateSecret)
}

// VerifyState checks signature and expiry of a state issued by AuthURL.
func (g *GoogleImporter) VerifyState(state string) error {
	if state == "" {
		return fmt.Errorf("%w: missing", ErrInvalidState)
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(*jwt.Token) (any, error) {
		return g.stateSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject("google-calendar"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	return nil
}

// Import lists timed events between from and to on calendarID and converts
// them to class blocks. All-day and cancelled events are not busy time and
// are skipped.
func (g *GoogleImporter) Import(ctx context.Context, token *oauth2.Token, calendarID string, from, to time.Time) ([]schedule.ClassBlock, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: google token required", shared.ErrValidation)
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(g.oauth.Client(ctx, token))}, g.opts...)
	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	call := srv.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250)
	if !from.IsZero() {
		call = call.TimeMin(from.Format(time.RFC3339))
	}
	if !to.IsZero() {
		call = call.TimeMax(to.Format(time.RFC3339))
	}

	var items []*gcal.Event
	err = call.Pages(ctx, func(page *gcal.Events) error {
		items = append(items, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}
	return blocksFromGoogle(items)
}

func blocksFromGoogle(items []*gcal.Event) ([]schedule.ClassBlock, error) {
	blocks := make([]schedule.ClassBlock, 0, len(items))
	for i, item := range items {
		if item.Status == "cancelled" || item.Start == nil || item.End == nil {
			continue
		}
		if item.Start.DateTime == "" || item.End.DateTime == "" {
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d start: %v", shared.ErrParse, i, err)
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d end: %v", shared.ErrParse, i, err)
		}
		iv, err := schedule.NewInterval(start, end)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", shared.ErrParse, i, err)
		}

		title := item.Summary
		if title == "" {
			title = UntitledEvent
		}
		blocks = append(blocks, schedule.ClassBlock{
			ID:       uuid.NewString(),
			Title:    title,
			Location: item.Location,
			Interval: iv,
		})
	}
	return blocks, nil
}
