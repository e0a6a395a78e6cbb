package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

var (
	ErrQueueClosed   = errors.New("token queue closed")
	ErrNoToken       = errors.New("no access token available")
	ErrRefreshFailed = errors.New("access token refresh failed")
)

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

type RefresherFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	return f(ctx, refreshToken)
}

// CasdoorRefresher refreshes tokens against the casdoor token endpoint.
type CasdoorRefresher struct {
	client *casdoorsdk.Client
}

func NewCasdoorRefresher(client *casdoorsdk.Client) *CasdoorRefresher {
	return &CasdoorRefresher{client: client}
}

func (r *CasdoorRefresher) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	return r.client.RefreshOAuthToken(refreshToken)
}

// TokenQueue owns the access token for outbound requests. A request rejected with 401
// parks until a single refresh completes and is then replayed with the new token.
// Requests issued while a refresh is in flight wait for it instead of using the stale token.
type TokenQueue struct {
	refresher Refresher
	logger    *slog.Logger

	mu         sync.Mutex
	token      *oauth2.Token
	refreshing chan struct{}

	group     singleflight.Group
	refreshes atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

func NewTokenQueue(initial *oauth2.Token, refresher Refresher, logger *slog.Logger) *TokenQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenQueue{
		refresher: refresher,
		logger:    logger,
		token:     initial,
		done:      make(chan struct{}),
	}
}

// Token returns the current token, waiting out any refresh in flight.
func (q *TokenQueue) Token(ctx context.Context) (*oauth2.Token, error) {
	for {
		q.mu.Lock()
		if q.isClosed() {
			q.mu.Unlock()
			return nil, ErrQueueClosed
		}
		wait := q.refreshing
		tok := q.token
		q.mu.Unlock()

		if wait == nil {
			if tok == nil {
				return nil, ErrNoToken
			}
			return tok, nil
		}

		select {
		case <-wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.done:
			return nil, ErrQueueClosed
		}
	}
}

// Refresh replaces stale with a fresh token. Callers holding the same stale token share
// one refresh; a caller whose token was already replaced gets the replacement directly.
func (q *TokenQueue) Refresh(ctx context.Context, stale *oauth2.Token) (*oauth2.Token, error) {
	ch := q.group.DoChan("refresh", func() (interface{}, error) {
		q.mu.Lock()
		if q.token != stale && q.token != nil {
			tok := q.token
			q.mu.Unlock()
			return tok, nil
		}
		if stale == nil || stale.RefreshToken == "" || q.refresher == nil {
			q.mu.Unlock()
			return nil, ErrNoToken
		}
		q.refreshing = make(chan struct{})
		q.mu.Unlock()

		tok, err := q.refresher.Refresh(context.WithoutCancel(ctx), stale.RefreshToken)

		q.mu.Lock()
		if err == nil {
			if tok.RefreshToken == "" {
				tok.RefreshToken = stale.RefreshToken
			}
			q.token = tok
			q.refreshes.Add(1)
		}
		close(q.refreshing)
		q.refreshing = nil
		q.mu.Unlock()

		if err != nil {
			q.logger.Warn("Access token refresh failed", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
		q.logger.Debug("Access token refreshed", "expiry", tok.Expiry)
		return tok, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.done:
		return nil, ErrQueueClosed
	}
}

// Do sends a request built by newRequest with the current token. A 401 parks the request
// until the token is refreshed and then replays it once.
func (q *TokenQueue) Do(ctx context.Context, httpClient *http.Client, newRequest func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	tok, err := q.Token(ctx)
	if err != nil {
		return nil, err
	}
	if !tok.Valid() && tok.RefreshToken != "" {
		if tok, err = q.Refresh(ctx, tok); err != nil {
			return nil, err
		}
	}

	resp, err := q.send(ctx, httpClient, newRequest, tok)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	resp.Body.Close()

	fresh, err := q.Refresh(ctx, tok)
	if err != nil {
		return nil, err
	}
	return q.send(ctx, httpClient, newRequest, fresh)
}

func (q *TokenQueue) send(ctx context.Context, httpClient *http.Client, newRequest func(ctx context.Context) (*http.Request, error), tok *oauth2.Token) (*http.Response, error) {
	req, err := newRequest(ctx)
	if err != nil {
		return nil, err
	}
	tok.SetAuthHeader(req)
	return httpClient.Do(req)
}

// Refreshes reports how many refreshes have completed.
func (q *TokenQueue) Refreshes() int64 {
	return q.refreshes.Load()
}

// Close releases every parked request with ErrQueueClosed.
func (q *TokenQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *TokenQueue) isClosed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}
