package bsky

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nobushige/botscan/internal/model"
)

// DefaultBaseURL is the public Bluesky API endpoint.
const DefaultBaseURL = "https://bsky.social"

// defaultProfileCacheSize bounds the in-memory profile cache. Follower
// lists of related seeds overlap heavily, so caching saves real requests.
const defaultProfileCacheSize = 4096

// pageLimit is the maximum page size the graph endpoints accept.
const pageLimit = 100

// Client fetches account data from the social graph.
//
// Design decision: Client is an interface so the crawl walker and the
// analysis pipeline can be tested against in-memory fakes without any
// HTTP machinery. HTTPClient is the production implementation.
type Client interface {
	// Authenticate establishes an API session with the given identifier
	// and app password. It must be called before any fetch method.
	Authenticate(ctx context.Context, identifier, password string) error

	// GetProfile fetches the full profile of one account.
	GetProfile(ctx context.Context, handle string) (*model.Profile, error)

	// GetFollowers fetches up to limit follower profiles of an account.
	// The returned profiles are summaries: counts may be present but
	// callers needing authoritative data should fetch the full profile.
	GetFollowers(ctx context.Context, handle string, limit int) ([]model.Profile, error)

	// GetRecentPosts fetches up to limit recent posts of an account,
	// newest first.
	GetRecentPosts(ctx context.Context, handle string, limit int) ([]model.Post, error)
}

// HTTPClient is the AT protocol implementation of Client.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryPolicy
	userAgent  string

	mu        sync.RWMutex
	accessJwt string

	profiles *lru.Cache[string, *model.Profile]
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL overrides the API endpoint. Used for self-hosted PDS
// instances and tests.
func WithBaseURL(baseURL string) Option {
	return func(c *HTTPClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithRetryPolicy replaces the transient-error retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *HTTPClient) {
		c.retry = p
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		c.userAgent = ua
	}
}

// NewHTTPClient creates a graph API client with the given options.
func NewHTTPClient(opts ...Option) (*HTTPClient, error) {
	c := &HTTPClient{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retry:     DefaultRetryPolicy(),
		userAgent: "botscan",
	}
	for _, opt := range opts {
		opt(c)
	}

	cache, err := lru.New[string, *model.Profile](defaultProfileCacheSize)
	if err != nil {
		return nil, fmt.Errorf("bsky: create profile cache: %w", err)
	}
	c.profiles = cache

	return c, nil
}

// sessionResponse is the body of com.atproto.server.createSession.
type sessionResponse struct {
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
	Handle     string `json:"handle"`
	DID        string `json:"did"`
}

// Authenticate implements Client.
func (c *HTTPClient) Authenticate(ctx context.Context, identifier, password string) error {
	body, err := json.Marshal(map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if err != nil {
		return fmt.Errorf("bsky: marshal session request: %w", err)
	}

	var session sessionResponse
	err = c.retry.do(ctx, func() error {
		return c.post(ctx, "com.atproto.server.createSession", body, &session)
	})
	if err != nil {
		return err
	}
	if session.AccessJwt == "" {
		return fmt.Errorf("%w: empty session token", ErrAuth)
	}

	c.mu.Lock()
	c.accessJwt = session.AccessJwt
	c.mu.Unlock()
	return nil
}

// profileResponse is the body of app.bsky.actor.getProfile.
type profileResponse struct {
	Handle         string    `json:"handle"`
	DisplayName    string    `json:"displayName"`
	Description    string    `json:"description"`
	Avatar         string    `json:"avatar"`
	FollowsCount   int       `json:"followsCount"`
	FollowersCount int       `json:"followersCount"`
	PostsCount     int       `json:"postsCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (pr *profileResponse) toModel() model.Profile {
	return model.Profile{
		Handle:         pr.Handle,
		DisplayName:    pr.DisplayName,
		Description:    pr.Description,
		FollowingCount: pr.FollowsCount,
		FollowersCount: pr.FollowersCount,
		PostsCount:     pr.PostsCount,
		CreatedAt:      pr.CreatedAt,
		HasAvatar:      pr.Avatar != "",
	}
}

// GetProfile implements Client. Responses are cached, so repeated lookups
// of the same handle within a run cost one request.
func (c *HTTPClient) GetProfile(ctx context.Context, handle string) (*model.Profile, error) {
	if cached, ok := c.profiles.Get(handle); ok {
		return cached, nil
	}

	var resp profileResponse
	err := c.retry.do(ctx, func() error {
		return c.get(ctx, "app.bsky.actor.getProfile", url.Values{"actor": {handle}}, &resp)
	})
	if err != nil {
		return nil, err
	}

	profile := resp.toModel()
	c.profiles.Add(handle, &profile)
	return &profile, nil
}

// followersResponse is the body of app.bsky.graph.getFollowers.
type followersResponse struct {
	Followers []profileResponse `json:"followers"`
	Cursor    string            `json:"cursor"`
}

// GetFollowers implements Client, paging through the follower list until
// limit profiles are collected or the list is exhausted.
func (c *HTTPClient) GetFollowers(ctx context.Context, handle string, limit int) ([]model.Profile, error) {
	followers := make([]model.Profile, 0, limit)
	cursor := ""

	for len(followers) < limit {
		pageSize := limit - len(followers)
		if pageSize > pageLimit {
			pageSize = pageLimit
		}

		params := url.Values{
			"actor": {handle},
			"limit": {strconv.Itoa(pageSize)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp followersResponse
		err := c.retry.do(ctx, func() error {
			return c.get(ctx, "app.bsky.graph.getFollowers", params, &resp)
		})
		if err != nil {
			return nil, err
		}

		for _, f := range resp.Followers {
			followers = append(followers, f.toModel())
		}

		if resp.Cursor == "" || len(resp.Followers) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	return followers, nil
}

// feedResponse is the body of app.bsky.feed.getAuthorFeed.
type feedResponse struct {
	Feed []struct {
		Post struct {
			URI    string `json:"uri"`
			Record struct {
				Text      string    `json:"text"`
				CreatedAt time.Time `json:"createdAt"`
				Reply     *struct {
					Parent struct {
						URI string `json:"uri"`
					} `json:"parent"`
				} `json:"reply"`
			} `json:"record"`
		} `json:"post"`
		Reason *struct {
			Type string `json:"$type"`
		} `json:"reason"`
	} `json:"feed"`
	Cursor string `json:"cursor"`
}

// GetRecentPosts implements Client.
func (c *HTTPClient) GetRecentPosts(ctx context.Context, handle string, limit int) ([]model.Post, error) {
	posts := make([]model.Post, 0, limit)
	cursor := ""

	for len(posts) < limit {
		pageSize := limit - len(posts)
		if pageSize > pageLimit {
			pageSize = pageLimit
		}

		params := url.Values{
			"actor": {handle},
			"limit": {strconv.Itoa(pageSize)},
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp feedResponse
		err := c.retry.do(ctx, func() error {
			return c.get(ctx, "app.bsky.feed.getAuthorFeed", params, &resp)
		})
		if err != nil {
			return nil, err
		}

		for _, item := range resp.Feed {
			posts = append(posts, model.Post{
				URI:       item.Post.URI,
				Text:      item.Post.Record.Text,
				CreatedAt: item.Post.Record.CreatedAt,
				IsRepost:  item.Reason != nil && item.Reason.Type == "app.bsky.feed.defs#reasonRepost",
				IsReply:   item.Post.Record.Reply != nil,
			})
		}

		if resp.Cursor == "" || len(resp.Feed) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	return posts, nil
}

// get performs an authenticated GET against an xrpc method.
func (c *HTTPClient) get(ctx context.Context, method string, params url.Values, out any) error {
	c.mu.RLock()
	token := c.accessJwt
	c.mu.RUnlock()
	if token == "" {
		return ErrNotAuthenticated
	}

	endpoint := fmt.Sprintf("%s/xrpc/%s?%s", c.baseURL, method, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("bsky: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	return c.roundTrip(req, out)
}

// post performs an unauthenticated POST against an xrpc method.
func (c *HTTPClient) post(ctx context.Context, method string, body []byte, out any) error {
	endpoint := fmt.Sprintf("%s/xrpc/%s", c.baseURL, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("bsky: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	return c.roundTrip(req, out)
}

func (c *HTTPClient) roundTrip(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			sentinel:   classify(resp.StatusCode),
		}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	return nil
}
