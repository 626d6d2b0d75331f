// Package blogger implements domain.BlogRepository against the Blogger v3
// REST API, authenticated with an OAuth refresh-token grant.
package blogger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

const (
	defaultBaseURL = "https://www.googleapis.com/blogger/v3"
	maxPageSize    = 50
	requestTimeout = 30 * time.Second
)

// Credentials is the OAuth bundle exchanged for a short-lived access token.
// Values are opaque secrets scoped to one run; they are never logged and
// never written to disk.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// RetryPolicy bounds the retries applied to transient API failures.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
}

// DefaultRetryPolicy retries 429 and 5xx replies four times with exponential
// backoff starting at half a second.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries:      4,
	InitialInterval: 500 * time.Millisecond,
}

// Client is a Blogger API client scoped to a single blog.
type Client struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	baseURL    string
	blogID     string
	retry      RetryPolicy
}

// Option customizes a Client. Primarily for tests, which point the client at
// a local server.
type Option func(*options)

type options struct {
	baseURL  string
	tokenURL string
	retry    RetryPolicy
}

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func WithTokenURL(u string) Option {
	return func(o *options) { o.tokenURL = u }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) { o.retry = p }
}

// NewClient creates a client for one blog. The context bounds the lifetime
// of token refreshes, which for this one-shot workflow is the whole run.
func NewClient(ctx context.Context, creds Credentials, blogID string, opts ...Option) *Client {
	o := options{
		baseURL:  defaultBaseURL,
		tokenURL: google.Endpoint.TokenURL,
		retry:    DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(&o)
	}

	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: o.tokenURL},
	}
	tokens := oauth2.ReuseTokenSource(nil, conf.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken}))

	return &Client{
		httpClient: &http.Client{
			Transport: &oauth2.Transport{Source: tokens},
			Timeout:   requestTimeout,
		},
		tokens:  tokens,
		baseURL: o.baseURL,
		blogID:  blogID,
		retry:   o.retry,
	}
}

// ValidateCredentials forces a token exchange before any posts call is made.
// A rejected exchange is fatal and never retried.
func (c *Client) ValidateCredentials(ctx context.Context) error {
	if _, err := c.tokens.Token(); err != nil {
		return &domain.AuthError{Err: err}
	}
	return nil
}

// ListPosts fetches every post of the blog the API exposes, drafts included,
// following pagination to the end.
func (c *Client) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	op := fmt.Sprintf("listing posts for blog %s", c.blogID)

	var all []*domain.Post
	pageToken := ""
	for {
		query := url.Values{
			"view":       {"ADMIN"},
			"status":     {"draft", "live", "scheduled"},
			"maxResults": {fmt.Sprint(maxPageSize)},
			"fields":     {"nextPageToken,items(id,title,status,url)"},
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page postList
		err := c.doJSON(ctx, http.MethodGet, c.postsURL("", query), nil, &page)
		if err != nil {
			return nil, handleAPIError(op, err)
		}

		for _, item := range page.Items {
			all = append(all, item.toDomain())
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return all, nil
}

// InsertDraft creates a new post with isDraft=true. The API is never asked
// to create a live post directly.
func (c *Client) InsertDraft(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	op := fmt.Sprintf("inserting draft %q", post.Title)

	body := apiPost{
		Kind:    "blogger#post",
		Title:   post.Title,
		Content: post.Content,
		Labels:  post.Labels,
	}

	var created apiPost
	err := c.doJSON(ctx, http.MethodPost, c.postsURL("", url.Values{"isDraft": {"true"}}), &body, &created)
	if err != nil {
		return nil, handleAPIError(op, err)
	}
	return created.toDomain(), nil
}

// UpdatePost patches an existing post. The patch carries only content and
// labels, so the matched draft keeps its title and status.
func (c *Client) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	op := fmt.Sprintf("updating post %s", post.ID)

	body := apiPost{
		Content: post.Content,
		Labels:  post.Labels,
	}

	var updated apiPost
	err := c.doJSON(ctx, http.MethodPatch, c.postsURL(post.ID, nil), &body, &updated)
	if err != nil {
		return nil, handleAPIError(op, err)
	}
	return updated.toDomain(), nil
}

func (c *Client) postsURL(postID string, query url.Values) string {
	u := fmt.Sprintf("%s/blogs/%s/posts", c.baseURL, c.blogID)
	if postID != "" {
		u += "/" + url.PathEscape(postID)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// doJSON performs one API call with bounded exponential backoff. Transport
// errors, 429 and 5xx replies are retried; auth rejections and every other
// status are permanent.
func (c *Client) doJSON(ctx context.Context, method, rawURL string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			var retrieveErr *oauth2.RetrieveError
			if errors.As(err, &retrieveErr) {
				// Token refresh failed mid-call. Same class as a
				// rejected credential exchange, never retried.
				return backoff.Permanent(&domain.AuthError{Err: err})
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
			if out == nil {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decoding response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return backoff.Permanent(&domain.AuthError{Err: newAPIError(resp.StatusCode, data)})
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
			return newAPIError(resp.StatusCode, data)
		default:
			return backoff.Permanent(newAPIError(resp.StatusCode, data))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retry.InitialInterval
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, c.retry.MaxRetries), ctx))
}

// handleAPIError inspects an error from an API call and returns a more
// informative, structured error. Auth errors pass through untouched so the
// caller can classify them.
func handleAPIError(op string, err error) error {
	if err == nil {
		return nil
	}

	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return err
	}

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("blogger: %s failed with status %d: %s", op, apiErr.StatusCode, apiErr.Message)
	}

	return fmt.Errorf("blogger: %s failed: %w", op, err)
}
