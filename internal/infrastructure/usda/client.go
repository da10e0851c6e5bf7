package usda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/grocerlist/usdaimport/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultPageSize is the largest page the search endpoint serves
const DefaultPageSize = 200

// DefaultDataTypes are the reference tiers requested from FoodData Central
var DefaultDataTypes = []string{"Foundation", "SR Legacy", "Branded"}

// ClientConfig holds the tunables of the USDA client
type ClientConfig struct {
	APIKey    string
	BaseURL   string
	PageSize  int
	DataTypes []string
	// PageDelay is the minimum spacing between two page requests
	PageDelay time.Duration
	Timeout   time.Duration
}

// Client handles communication with the USDA FoodData Central API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	pageSize    int
	dataTypes   []string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	debug       bool
}

// NewClient creates a new USDA API client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if len(cfg.DataTypes) == 0 {
		cfg.DataTypes = DefaultDataTypes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// One token per PageDelay with a burst of one: the first page goes out
	// immediately and every following page waits out the delay.
	limit := rate.Inf
	if cfg.PageDelay > 0 {
		limit = rate.Every(cfg.PageDelay)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		pageSize:    cfg.PageSize,
		dataTypes:   cfg.DataTypes,
		rateLimiter: rate.NewLimiter(limit, 1),
		logger:      logger.Named("usda"),
	}
}

// SetDebug enables logging of every request URL (with the key redacted)
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "GrocerList-Importer/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUSDAAPIFailure, err)
	}

	return resp, nil
}

// searchURL builds the paginated search URL for pageNumber
func (c *Client) searchURL(pageNumber int) string {
	params := url.Values{}
	params.Add("api_key", c.apiKey)
	params.Add("pageSize", strconv.Itoa(c.pageSize))
	params.Add("pageNumber", strconv.Itoa(pageNumber))
	params.Add("dataType", strings.Join(c.dataTypes, ","))

	return fmt.Sprintf("%s/v1/foods/search?%s", c.baseURL, params.Encode())
}

// FetchPage retrieves one page of the food search listing. A page past the
// end of the listing comes back with no foods. Each call makes a single
// attempt; callers decide how to treat a failed page.
func (c *Client) FetchPage(ctx context.Context, pageNumber int) (*domain.SearchPage, error) {
	if pageNumber < 1 {
		return nil, fmt.Errorf("%w: page number must be positive, got %d", domain.ErrInvalidRequest, pageNumber)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := c.searchURL(pageNumber)
	if c.debug {
		c.logger.Debug("fetching page",
			zap.Int("page", pageNumber),
			zap.String("url", strings.Replace(reqURL, c.apiKey, "REDACTED", 1)))
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrUSDAAPIFailure, resp.StatusCode, string(body))
	}

	var page domain.SearchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUSDAAPIFailure, err)
	}

	c.logger.Debug("page fetched",
		zap.Int("page", pageNumber),
		zap.Int("foods", len(page.Foods)),
		zap.Int("total_pages", page.TotalPages))

	return &page, nil
}
