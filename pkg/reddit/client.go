// Package reddit is a read-only client for the Reddit OAuth API using
// application-only (client credentials) authentication.
package reddit

import (
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/sells-group/misinfo-cli/internal/resilience"
)

const (
	defaultBaseURL  = "https://oauth.reddit.com"
	defaultTokenURL = "https://www.reddit.com/api/v1/access_token"
	maxPageSize     = 100
)

// Client reads submissions and comments.
type Client interface {
	// Submissions yields submissions of one subreddit, fetching pages
	// lazily. Iteration stops after the first error.
	Submissions(ctx context.Context, q Query) iter.Seq2[Submission, error]
	// UserComments returns up to limit of the user's comments, hot first.
	UserComments(ctx context.Context, user string, limit int) ([]Comment, error)
}

// Credentials identify a Reddit script or web app.
type Credentials struct {
	ClientID     string
	ClientSecret string
	UserAgent    string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(c *httpClient) {
		c.tokenURL = u
	}
}

// WithHTTPClient sets the client used for API calls. It must attach
// authorization itself; no token is requested.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default 1 req/s, burst 5 limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = NewAdaptiveLimiter(rate.Limit(rps), burst)
		}
	}
}

// WithRetry overrides the retry policy for transient API failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	creds    Credentials
	baseURL  string
	tokenURL string
	http     *http.Client
	limiter  *AdaptiveLimiter
	retry    resilience.RetryConfig
}

// NewClient creates a Reddit API client.
func NewClient(creds Credentials, opts ...Option) Client {
	if creds.UserAgent == "" {
		creds.UserAgent = "misinfo-cli/1.0"
	}
	c := &httpClient{
		creds:    creds,
		baseURL:  defaultBaseURL,
		tokenURL: defaultTokenURL,
		limiter:  NewAdaptiveLimiter(1, 5),
		retry:    resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("reddit", "get")
	}
	if c.http == nil {
		c.http = c.oauthClient()
	}
	return c
}

func (c *httpClient) oauthClient() *http.Client {
	cc := &clientcredentials.Config{
		ClientID:     c.creds.ClientID,
		ClientSecret: c.creds.ClientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	base := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &userAgentTransport{agent: c.creds.UserAgent, base: http.DefaultTransport},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return cc.Client(ctx)
}

// userAgentTransport sets the User-Agent Reddit requires on every request,
// token requests included.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(req)
}

func (c *httpClient) Submissions(ctx context.Context, q Query) iter.Seq2[Submission, error] {
	return func(yield func(Submission, error) bool) {
		if q.Sort == "" {
			q.Sort = SortTop
		}
		path := "/r/" + url.PathEscape(q.Subreddit) + "/" + string(q.Sort)

		params := url.Values{}
		if q.Sort == SortTop && q.Window != "" {
			params.Set("t", q.Window)
		}

		yielded := 0
		after := ""
		for {
			pageSize := maxPageSize
			if q.Limit > 0 {
				pageSize = min(maxPageSize, q.Limit-yielded)
			}
			params.Set("limit", strconv.Itoa(pageSize))
			if after != "" {
				params.Set("after", after)
			}

			page, err := c.listing(ctx, path, params)
			if err != nil {
				yield(Submission{}, eris.Wrapf(err, "reddit: list r/%s", q.Subreddit))
				return
			}

			for _, child := range page.Children {
				if child.Kind != "t3" {
					continue
				}
				var s Submission
				if err := json.Unmarshal(child.Data, &s); err != nil {
					yield(Submission{}, eris.Wrap(err, "reddit: decode submission"))
					return
				}
				if !yield(s, nil) {
					return
				}
				yielded++
				if q.Limit > 0 && yielded >= q.Limit {
					return
				}
			}

			if q.Limit <= 0 || page.After == "" || len(page.Children) == 0 {
				return
			}
			after = page.After
		}
	}
}

func (c *httpClient) UserComments(ctx context.Context, user string, limit int) ([]Comment, error) {
	path := "/user/" + url.PathEscape(user) + "/comments"
	params := url.Values{}
	params.Set("sort", "hot")

	var comments []Comment
	after := ""
	for limit <= 0 || len(comments) < limit {
		pageSize := maxPageSize
		if limit > 0 {
			pageSize = min(maxPageSize, limit-len(comments))
		}
		params.Set("limit", strconv.Itoa(pageSize))
		if after != "" {
			params.Set("after", after)
		}

		page, err := c.listing(ctx, path, params)
		if err != nil {
			return comments, eris.Wrapf(err, "reddit: comments of %s", user)
		}
		for _, child := range page.Children {
			if child.Kind != "t1" {
				continue
			}
			var cm Comment
			if err := json.Unmarshal(child.Data, &cm); err != nil {
				return comments, eris.Wrap(err, "reddit: decode comment")
			}
			comments = append(comments, cm)
		}
		if page.After == "" || len(page.Children) == 0 {
			break
		}
		after = page.After
	}
	if limit > 0 && len(comments) > limit {
		comments = comments[:limit]
	}
	return comments, nil
}

func (c *httpClient) listing(ctx context.Context, path string, params url.Values) (*listingData, error) {
	params.Set("raw_json", "1")
	reqURL := c.baseURL + path + "?" + params.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, reqURL)
	})
	if err != nil {
		return nil, err
	}

	var l listing
	if err := json.Unmarshal(body, &l); err != nil {
		return nil, eris.Wrap(err, "reddit: unmarshal listing")
	}
	return &l.Data, nil
}

func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "reddit: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: create request")
	}
	req.Header.Set("User-Agent", c.creds.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrap(err, "reddit: send request")
		}
		return nil, resilience.NewTransientError(eris.Wrap(err, "reddit: send request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "reddit: read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		c.limiter.OnRateLimit()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resilience.StatusError("reddit", resp.StatusCode, body)
	}
	c.limiter.OnSuccess()

	if err := c.respectRateHeaders(ctx, resp.Header); err != nil {
		return nil, err
	}
	return body, nil
}

// respectRateHeaders waits out the window when the X-Ratelimit-Remaining
// budget is exhausted.
func (c *httpClient) respectRateHeaders(ctx context.Context, h http.Header) error {
	remaining, err := strconv.ParseFloat(h.Get("X-Ratelimit-Remaining"), 64)
	if err != nil || remaining >= 1 {
		return nil
	}
	reset, err := strconv.ParseFloat(h.Get("X-Ratelimit-Reset"), 64)
	if err != nil || reset <= 0 {
		return nil
	}
	wait := time.Duration(reset * float64(time.Second))
	zap.L().Info("reddit: request budget exhausted, waiting for reset",
		zap.Duration("wait", wait),
	)
	sleep := c.retry.Sleep
	if sleep == nil {
		sleep = resilience.Sleep
	}
	return eris.Wrap(sleep(ctx, wait), "reddit: wait for rate limit reset")
}
