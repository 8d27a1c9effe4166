package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spacesedan/moodstream/internal/models"
)

const (
	REDDIT_AUTH_URL = "https://www.reddit.com/api/v1/access_token"
	REDDIT_API_URL  = "https://oauth.reddit.com"

	redditFetchTimeout = 15 * time.Second
)

// ErrSubredditEmpty is returned when the subreddit does not exist or its
// listing carries no posts.
var ErrSubredditEmpty = errors.New("subreddit not found or has no posts")

type RedditClient struct {
	config  *clientcredentials.Config
	client  *http.Client
	baseURL string
	mu      sync.Mutex
}

func NewRedditClient(clientID, clientSecret string) *RedditClient {
	oauthConf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     REDDIT_AUTH_URL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	client := oauthConf.Client(context.Background())
	client.Timeout = redditFetchTimeout

	return &RedditClient{
		config:  oauthConf,
		client:  client,
		baseURL: REDDIT_API_URL,
	}
}

func (rc *RedditClient) refreshClient() {
	client := rc.config.Client(context.Background())
	client.Timeout = redditFetchTimeout

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.client = client
}

// httpClient reads the shared handle under the same lock refreshClient
// writes it, so a 401-triggered refresh cannot race an in-flight fetch.
func (rc *RedditClient) httpClient() *http.Client {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.client
}

// FetchSubredditTitles returns the titles of the newest posts of a subreddit,
// newest first, at most limit entries.
func (rc *RedditClient) FetchSubredditTitles(ctx context.Context, subreddit string, limit int) ([]string, error) {
	return rc.fetchTitles(ctx, subreddit, limit, 0)
}

func (rc *RedditClient) fetchTitles(ctx context.Context, subreddit string, limit, attempt int) ([]string, error) {
	if attempt >= MAX_RETRIES {
		return nil, fmt.Errorf("[RedditClient] max retries reached for r/%s", subreddit)
	}

	parsedUrl, err := url.Parse(fmt.Sprintf("%s/r/%s/new", rc.baseURL, subreddit))
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Add("limit", strconv.Itoa(limit))
	parsedUrl.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedUrl.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := rc.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("[RedditClient] request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		slog.Warn("[RedditClient] Token expired - Refreshing and Retrying...")
		rc.refreshClient()
		return rc.fetchTitles(ctx, subreddit, limit, attempt+1)
	case http.StatusTooManyRequests:
		slog.Warn("[RedditClient] 429 Too Many Requests - Retrying with backoff",
			slog.Int("attempt", attempt+1))
		if err := sleepWithBackoff(ctx, attempt); err != nil {
			return nil, err
		}
		return rc.fetchTitles(ctx, subreddit, limit, attempt+1)
	case http.StatusNotFound, http.StatusForbidden:
		return nil, ErrSubredditEmpty
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return titlesFromListing(body, limit)
	}
	return nil, fmt.Errorf("[RedditClient] unexpected status %d for r/%s", resp.StatusCode, subreddit)
}

func titlesFromListing(body []byte, limit int) ([]string, error) {
	var listing models.RedditAPIResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("[RedditClient] failed to decode listing: %w", err)
	}

	titles := make([]string, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		if child.Data.Title == "" {
			continue
		}
		titles = append(titles, child.Data.Title)
		if len(titles) == limit {
			break
		}
	}
	if len(titles) == 0 {
		return nil, ErrSubredditEmpty
	}
	return titles, nil
}

func sleepWithBackoff(ctx context.Context, attempt int) error {
	backoff := INITIAL_BACKOFF << attempt
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
