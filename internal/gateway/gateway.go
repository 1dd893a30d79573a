// internal/gateway/gateway.go
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/farmcrate-storefront/internal/config"
	"github.com/your-org/farmcrate-storefront/internal/identity"
	"golang.org/x/sync/singleflight"
)

// Gateway is the single chokepoint for all outbound API calls. It hides
// the asynchronous credential-availability problem behind a bounded wait
// and collapses duplicate concurrent idempotent reads into one round trip.
//
// Construct one gateway at application start and pass it by reference to
// every consumer.
type Gateway struct {
	baseURL  string
	client   *http.Client
	resolver *identity.Resolver
	log      *logrus.Entry
	initWait time.Duration

	// flights dedupes in-flight GETs by resolved URL. Entries are
	// forgotten once a flight settles, so this dedupes concurrency, not
	// results.
	flights singleflight.Group
}

// Request describes one outbound call. Endpoints are statically
// partitioned by the Protected flag: protected requests wait for the
// identity resolver's first credential determination and attach the bearer
// token when one is present; public requests dispatch immediately with no
// credential.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      interface{}
	Protected bool
}

// envelope is the server's response wrapper
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// New creates a gateway talking to the configured API base URL
func New(cfg *config.Config, resolver *identity.Resolver, log *logrus.Logger) *Gateway {
	return &Gateway{
		baseURL: cfg.Client.BaseURL,
		client: &http.Client{
			Timeout: cfg.Client.RequestTimeout,
		},
		resolver: resolver,
		log:      log.WithField("component", "gateway"),
		initWait: cfg.Client.InitWait,
	}
}

// Get issues a deduplicated idempotent read
func (g *Gateway) Get(ctx context.Context, path string, query url.Values, protected bool, out interface{}) error {
	return g.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Protected: protected}, out)
}

// Post issues a mutating call; never deduplicated
func (g *Gateway) Post(ctx context.Context, path string, body interface{}, protected bool, out interface{}) error {
	return g.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body, Protected: protected}, out)
}

// Put issues a mutating call; never deduplicated
func (g *Gateway) Put(ctx context.Context, path string, body interface{}, protected bool, out interface{}) error {
	return g.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body, Protected: protected}, out)
}

// Delete issues a mutating call; never deduplicated
func (g *Gateway) Delete(ctx context.Context, path string, query url.Values, protected bool, out interface{}) error {
	return g.Do(ctx, Request{Method: http.MethodDelete, Path: path, Query: query, Protected: protected}, out)
}

// Do dispatches one request and unmarshals the response envelope's data
// field into out (which may be nil). All failures are normalized into
// *Error before being returned.
func (g *Gateway) Do(ctx context.Context, req Request, out interface{}) error {
	resolved := g.resolveURL(req.Path, req.Query)

	if req.Protected {
		if err := g.waitForIdentity(ctx); err != nil {
			return err
		}
	}

	token := ""
	if req.Protected {
		token = g.resolver.AuthToken()
	}

	var data json.RawMessage
	var err error
	if req.Method == http.MethodGet {
		data, err = g.dedupedGet(ctx, resolved, token)
	} else {
		data, err = g.roundTrip(ctx, req.Method, resolved, req.Body, token)
	}
	if err != nil {
		return err
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindAPI, Message: "malformed response body", Err: err}
	}
	return nil
}

// waitForIdentity blocks request dispatch until the resolver has made its
// first credential determination, up to a hard ceiling. On timeout the
// request proceeds without a credential rather than hanging forever; the
// server then answers with an authentication-required error that is
// surfaced normally.
func (g *Gateway) waitForIdentity(ctx context.Context) error {
	timer := time.NewTimer(g.initWait)
	defer timer.Stop()

	select {
	case <-g.resolver.Initialized():
		return nil
	case <-timer.C:
		g.log.Warn("identity initialization wait timed out, dispatching without credential")
		return nil
	case <-ctx.Done():
		return &Error{Kind: KindNetwork, Message: "request cancelled", Err: ctx.Err()}
	}
}

// dedupedGet attaches concurrent identical reads to one shared round trip.
// All callers joined to a flight observe the exact same response bytes.
// The flight entry is forgotten before it settles so a subsequent call
// always issues a fresh request.
func (g *Gateway) dedupedGet(ctx context.Context, resolved, token string) (json.RawMessage, error) {
	result, err, shared := g.flights.Do(resolved, func() (interface{}, error) {
		defer g.flights.Forget(resolved)
		return g.roundTrip(ctx, http.MethodGet, resolved, nil, token)
	})
	if shared {
		g.log.WithField("url", resolved).Debug("attached to in-flight read")
	}
	if err != nil {
		return nil, err
	}
	return result.(json.RawMessage), nil
}

// roundTrip performs one HTTP exchange and normalizes the outcome
func (g *Gateway) roundTrip(ctx context.Context, method, resolved string, body interface{}, token string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: KindAPI, Message: "failed to encode request body", Err: err}
		}
		reader = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, resolved, reader)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "failed to build request", Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.log.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"url":    resolved,
		}).Warn("transport failure")
		return nil, &Error{Kind: KindNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "failed to read response", Err: err}
	}

	var env envelope
	if len(raw) > 0 {
		// A body that is not the standard envelope is tolerated; the
		// status code still decides the outcome.
		_ = json.Unmarshal(raw, &env)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: KindAuthRequired, Status: resp.StatusCode, Message: serverMessage(env, "authentication required")}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &Error{Kind: KindAPI, Status: resp.StatusCode, Message: serverMessage(env, fmt.Sprintf("server returned status %d", resp.StatusCode))}
	}

	return env.Data, nil
}

func (g *Gateway) resolveURL(path string, query url.Values) string {
	resolved := g.baseURL + path
	if len(query) > 0 {
		resolved += "?" + query.Encode()
	}
	return resolved
}

func serverMessage(env envelope, fallback string) string {
	if env.Error != "" {
		return env.Error
	}
	return fallback
}
