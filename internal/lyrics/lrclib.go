package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"karolbroda.com/lrcplay/internal/cache"
	"karolbroda.com/lrcplay/internal/config"
	"karolbroda.com/lrcplay/internal/logger"
)

var ErrNotFound = errors.New("lyrics not found")

type Response struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

type TrackParams struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs int64
}

// Client fetches synced lyrics from an lrclib-compatible endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Memory
	// strategyDelay spaces out retries against the server
	strategyDelay time.Duration
}

func NewClient(baseURL string, memCache *cache.Memory) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 2 * time.Second,
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(config.HTTPTimeoutSeconds) * time.Second,
		},
		cache:         memCache,
		strategyDelay: 100 * time.Millisecond,
	}
}

type searchStrategy struct {
	artist   string
	title    string
	album    string
	duration int64
}

// normalizeString collapses repeated whitespace
func normalizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripVersionInfo removes parenthesised and bracketed suffixes like "(Remastered)"
func stripVersionInfo(s string) string {
	for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}} {
		for {
			start := strings.Index(s, pair[0])
			end := strings.Index(s, pair[1])
			if start < 0 || end <= start {
				break
			}
			s = s[:start] + " " + s[end+1:]
		}
	}
	return normalizeString(s)
}

func toTitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		words[i] = strings.ToUpper(string(runes[0])) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(words, " ")
}

func buildStrategies(track *TrackParams) []searchStrategy {
	artist := normalizeString(track.Artist)
	title := normalizeString(track.Title)

	candidates := []searchStrategy{
		{artist, title, track.Album, track.DurationSecs},
		{artist, title, "", track.DurationSecs},
		{artist, title, "", 0},
		{stripVersionInfo(track.Artist), stripVersionInfo(track.Title), "", 0},
		{strings.ToLower(artist), strings.ToLower(title), "", 0},
		{toTitleCase(artist), toTitleCase(title), "", 0},
		{track.Artist, track.Title, "", 0},
	}

	seen := make(map[searchStrategy]bool)
	var unique []searchStrategy
	for _, s := range candidates {
		if s.artist == "" || s.title == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}
	return unique
}

// Fetch looks the track up, trying progressively looser queries. A response
// with no lyrics at all counts as a miss and the next query is tried.
func (c *Client) Fetch(ctx context.Context, track *TrackParams) (*Response, error) {
	if track == nil {
		return nil, errors.New("nil track info")
	}
	if strings.TrimSpace(track.Title) == "" || strings.TrimSpace(track.Artist) == "" {
		return nil, errors.New("track title or artist is empty")
	}
	if c.baseURL == "" {
		return nil, errors.New("lrclib base url is empty")
	}

	if c.cache != nil {
		if pruned := c.cache.Prune(); pruned > 0 {
			logger.Debug("pruned lyrics cache", "expired", pruned, "remaining", c.cache.Len())
		}
		if cached, err := c.cache.Get(track.Artist, track.Title); err == nil {
			logger.Debug("lyrics cache hit", "artist", track.Artist, "title", track.Title)
			return &Response{
				TrackName:    cached.TrackName,
				ArtistName:   cached.ArtistName,
				AlbumName:    cached.AlbumName,
				Duration:     cached.Duration,
				Instrumental: cached.Instrumental,
				PlainLyrics:  cached.PlainLyrics,
				SyncedLyrics: cached.SyncedLyrics,
			}, nil
		}
	}

	parsedURL, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid lrclib url %q: %w", c.baseURL, err)
	}

	var lastErr error
	for i, strategy := range buildStrategies(track) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.strategyDelay):
			}
		}

		query := parsedURL.Query()
		query.Set("artist_name", strategy.artist)
		query.Set("track_name", strategy.title)
		query.Del("album_name")
		query.Del("duration")
		if strategy.album != "" {
			query.Set("album_name", strategy.album)
		}
		if strategy.duration > 0 {
			query.Set("duration", fmt.Sprintf("%d", strategy.duration))
		}
		parsedURL.RawQuery = query.Encode()

		payload, err := c.doFetchRequest(ctx, parsedURL.String())
		if err != nil {
			lastErr = err
			logger.Debug("lyrics lookup failed", "artist", strategy.artist, "title", strategy.title, "err", err)
			if isTimeoutError(err) {
				return nil, errors.New("lyrics server took too long to respond")
			}
			continue
		}

		if payload.PlainLyrics == "" && payload.SyncedLyrics == "" && !payload.Instrumental {
			lastErr = ErrNotFound
			continue
		}

		if c.cache != nil {
			_ = c.cache.Set(track.Artist, track.Title, &cache.LyricEntry{
				TrackName:    payload.TrackName,
				ArtistName:   payload.ArtistName,
				AlbumName:    payload.AlbumName,
				Duration:     payload.Duration,
				Instrumental: payload.Instrumental,
				PlainLyrics:  payload.PlainLyrics,
				SyncedLyrics: payload.SyncedLyrics,
			})
		}

		return payload, nil
	}

	if lastErr == nil {
		lastErr = ErrNotFound
	}
	return nil, fmt.Errorf("no lyrics found for %s - %s: %w", track.Artist, track.Title, lastErr)
}

// ClearCache forgets every cached response.
func (c *Client) ClearCache() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Client) doFetchRequest(parentCtx context.Context, requestURL string) (*Response, error) {
	timeout := time.Duration(config.HTTPTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(parentCtx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build http request: %w", err)
	}

	req.Header.Set("User-Agent", "lrcplay/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("lrclib returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode lrclib json: %w", err)
	}

	return &payload, nil
}
