package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/pkg/metrics"
)

// Client implements ports.RouteProvider against an OSRM-compatible routing
// service. Each call is one GET per profile requesting full geometry and
// step-level output, with a bounded number of retries for transient failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// NewClient creates a provider client. maxRetries counts retries after the
// first attempt; backoff is the initial delay and doubles per retry.
func NewClient(baseURL string, timeout time.Duration, maxRetries int, backoff time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// --- provider response schema ---

type routeResponse struct {
	Code   string  `json:"code"`
	Routes []route `json:"routes"`
}

type route struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
	Legs     []leg   `json:"legs"`
}

type leg struct {
	Steps []step `json:"steps"`
}

type step struct {
	Distance float64  `json:"distance"`
	Maneuver maneuver `json:"maneuver"`
}

type maneuver struct {
	Instruction string `json:"instruction"`
	Type        string `json:"type"`
	Modifier    string `json:"modifier"`
}

// FetchRoute computes one route for the given profile. Transient failures
// (timeouts, 5xx, connection errors) are retried with doubling backoff;
// semantic failures are returned immediately.
func (c *Client) FetchRoute(ctx context.Context, origin, dest domain.Coordinate, profile domain.TransportProfile) (result *domain.RouteResult, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = domain.FailureKind(err)
		}
		metrics.ProviderCalls.WithLabelValues(string(profile), outcome).Inc()
		metrics.ProviderCallDuration.WithLabelValues(string(profile)).Observe(time.Since(start).Seconds())
	}()

	reqURL := c.routeURL(origin, dest, profile)

	wait := c.backoff
	for attempt := 0; ; attempt++ {
		result, err = c.fetchOnce(ctx, reqURL, profile)
		if err == nil || !isTransient(err) || attempt >= c.maxRetries {
			return result, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", domain.ErrProviderTimeout, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
}

func (c *Client) routeURL(origin, dest domain.Coordinate, profile domain.TransportProfile) string {
	query := url.Values{}
	query.Set("overview", "full")
	query.Set("steps", "true")

	// Provider addressing is profile name plus semicolon-separated lng,lat pairs.
	return fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?%s",
		c.baseURL, profile,
		origin.Lng, origin.Lat, dest.Lng, dest.Lat,
		query.Encode())
}

func (c *Client) fetchOnce(ctx context.Context, reqURL string, profile domain.TransportProfile) (*domain.RouteResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrProviderTimeout, err)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned %s", domain.ErrProviderUnavailable, resp.Status)
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusBadRequest:
		// OSRM-style providers report semantic failures (NoRoute etc.) with
		// a parseable body on 200 or 400.
	default:
		return nil, newSemanticUnavailable(resp.Status)
	}

	var parsed routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, err)
	}

	if parsed.Code == "" {
		return nil, fmt.Errorf("%w: missing status code", domain.ErrMalformedResponse)
	}
	if parsed.Code != "Ok" {
		if parsed.Code == "NoRoute" || parsed.Code == "NoSegment" {
			return nil, domain.ErrNoRouteFound
		}
		return nil, newSemanticUnavailable(parsed.Code)
	}
	if len(parsed.Routes) == 0 {
		return nil, domain.ErrNoRouteFound
	}

	return toRouteResult(parsed.Routes[0], profile), nil
}

// toRouteResult maps the first route candidate onto the domain shape. Totals
// come from the route; steps from its first leg.
func toRouteResult(r route, profile domain.TransportProfile) *domain.RouteResult {
	result := &domain.RouteResult{
		Profile:         profile,
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
	}

	if len(r.Legs) == 0 {
		return result
	}
	for _, s := range r.Legs[0].Steps {
		result.Steps = append(result.Steps, domain.RouteStep{
			Instruction:    instructionText(s.Maneuver),
			DistanceMeters: s.Distance,
		})
	}
	return result
}

// instructionText prefers the provider's text and falls back to a generic
// phrase built from the maneuver when it is omitted.
func instructionText(m maneuver) string {
	if m.Instruction != "" {
		return m.Instruction
	}
	switch {
	case m.Type != "" && m.Modifier != "":
		return fmt.Sprintf("%s %s", m.Type, m.Modifier)
	case m.Type != "":
		return m.Type
	default:
		return "Continue"
	}
}

// semanticUnavailable marks non-retryable provider failures so the retry
// loop leaves them alone.
type semanticUnavailable struct {
	detail string
}

func newSemanticUnavailable(detail string) error {
	return &semanticUnavailable{detail: detail}
}

func (e *semanticUnavailable) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrProviderUnavailable, e.detail)
}

func (e *semanticUnavailable) Is(target error) bool {
	return target == domain.ErrProviderUnavailable
}

// isTransient reports whether the failure is worth retrying: timeouts,
// connection errors, and 5xx responses. Semantic failures are not.
func isTransient(err error) bool {
	if errors.Is(err, domain.ErrNoRouteFound) || errors.Is(err, domain.ErrMalformedResponse) {
		return false
	}
	var semantic *semanticUnavailable
	if errors.As(err, &semantic) {
		return false
	}
	return errors.Is(err, domain.ErrProviderTimeout) || errors.Is(err, domain.ErrProviderUnavailable)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}
