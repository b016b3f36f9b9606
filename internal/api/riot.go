package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"league-tracker/internal/config"
	"league-tracker/internal/constants"
	"league-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

type RiotClient struct {
	apiKey      string
	baseURL     string
	client      *fasthttp.Client
	limiter     *rate.Limiter
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

// RateLimitInfo mirrors the last seen X-*-Rate-Limit headers, e.g.
// "20:1,100:120" for the limit and "3:1,41:120" for the count.
type RateLimitInfo struct {
	AppLimit    string    `json:"app_limit"`
	AppCount    string    `json:"app_count"`
	MethodLimit string    `json:"method_limit"`
	MethodCount string    `json:"method_count"`
	Throttled   int       `json:"throttled"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewRiotClient(cfg *config.Config, logger zerolog.Logger) *RiotClient {
	rps := cfg.RiotRequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	return &RiotClient{
		apiKey:  cfg.RiotAPIKey,
		baseURL: strings.TrimRight(cfg.RiotBaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), limiterBurst(rps)),
		logger:  logger,
	}
}

// limiterBurst keeps at least one token so fractional rates (a restricted
// key at 100 per 120s) still let requests through.
func limiterBurst(rps float64) int {
	return max(1, int(math.Ceil(rps)))
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if v := string(resp.Header.Peek("X-App-Rate-Limit")); v != "" {
		c.rateLimit.AppLimit = v
	}
	if v := string(resp.Header.Peek("X-App-Rate-Limit-Count")); v != "" {
		c.rateLimit.AppCount = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit")); v != "" {
		c.rateLimit.MethodLimit = v
	}
	if v := string(resp.Header.Peek("X-Method-Rate-Limit-Count")); v != "" {
		c.rateLimit.MethodCount = v
	}
	if resp.StatusCode() == fasthttp.StatusTooManyRequests {
		c.rateLimit.Throttled++
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// hostURL fills the {host} placeholder with a routing cluster or platform
// code. Base URLs without the placeholder are used as-is.
func (c *RiotClient) hostURL(host, path string) string {
	return strings.ReplaceAll(c.baseURL, "{host}", host) + path
}

func (c *RiotClient) GetAccount(ctx context.Context, cluster domain.Cluster, gameName, tagLine string) (*AccountDTO, error) {
	u := c.hostURL(string(cluster), fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine)))
	return doRequest[AccountDTO](ctx, c, u)
}

func (c *RiotClient) GetSummonerByPuuid(ctx context.Context, platform, puuid string) (*SummonerDTO, error) {
	u := c.hostURL(platform, "/lol/summoner/v4/summoners/by-puuid/"+url.PathEscape(puuid))
	return doRequest[SummonerDTO](ctx, c, u)
}

func (c *RiotClient) GetLeagueEntries(ctx context.Context, platform, summonerID string) ([]LeagueEntryDTO, error) {
	u := c.hostURL(platform, "/lol/league/v4/entries/by-summoner/"+url.PathEscape(summonerID))
	entries, err := doRequest[[]LeagueEntryDTO](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

func (c *RiotClient) GetLeagueEntriesByPuuid(ctx context.Context, platform, puuid string) ([]LeagueEntryDTO, error) {
	u := c.hostURL(platform, "/lol/league/v4/entries/by-puuid/"+url.PathEscape(puuid))
	entries, err := doRequest[[]LeagueEntryDTO](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

func (c *RiotClient) GetMatchIDs(ctx context.Context, cluster domain.Cluster, puuid string, count int) ([]string, error) {
	u := c.hostURL(string(cluster), fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids?start=0&count=%d",
		url.PathEscape(puuid), count))
	ids, err := doRequest[[]string](ctx, c, u)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *RiotClient) GetMatch(ctx context.Context, cluster domain.Cluster, matchID string) (*MatchDTO, error) {
	u := c.hostURL(string(cluster), "/lol/match/v5/matches/"+url.PathEscape(matchID))
	return doRequest[MatchDTO](ctx, c, u)
}

// doRequest retries only on 429, waiting for Retry-After when the upstream
// sends one. Every other non-200 is returned as *domain.UpstreamError.
func doRequest[T any](ctx context.Context, client *RiotClient, url string) (*T, error) {
	var result T
	var retryAfter time.Duration

	backoff := retry.WithMaxRetries(constants.APIMaxRetries, retry.BackoffFunc(func() (time.Duration, bool) {
		return retryAfter, false
	}))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		status, wait, err := client.fetch(ctx, url, &result)
		if err != nil && status == fasthttp.StatusTooManyRequests {
			retryAfter = wait
			client.logger.Warn().Str("url", url).Dur("retry_after", wait).Msg("rate limited by upstream")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *RiotClient) fetch(ctx context.Context, url string, out any) (int, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, 0, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", c.apiKey)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.ExternalAPITimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}

	c.updateRateLimit(resp)

	status := resp.StatusCode()
	if status != fasthttp.StatusOK {
		return status, parseRetryAfter(string(resp.Header.Peek("Retry-After"))), &domain.UpstreamError{Status: status, URL: url}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return status, 0, fmt.Errorf("failed to parse response: %w", err)
	}
	return status, 0, nil
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return constants.APIRetryFallback
	}
	wait := time.Duration(secs) * time.Second
	if wait > constants.APIRetryAfterCap {
		wait = constants.APIRetryAfterCap
	}
	return wait
}
