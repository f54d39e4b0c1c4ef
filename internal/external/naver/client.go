package naver

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"

	"github.com/wonny/esgproxy/backend/pkg/config"
	"github.com/wonny/esgproxy/backend/pkg/httputil"
	"github.com/wonny/esgproxy/backend/pkg/logger"
)

// ProviderName identifies this provider in results and errors
const ProviderName = "naver"

// Client handles communication with Naver Finance
// Tickers are 6 digit KRX codes (e.g. 005930).
// ⭐ SSOT: Naver Finance 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string // item pages
	chartURL   string // fchart
}

// NewClient creates a new Naver Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.NaverConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://finance.naver.com"
	}
	chartURL := cfg.ChartURL
	if chartURL == "" {
		chartURL = "https://fchart.stock.naver.com"
	}
	httpClient.WithHeader("Referer", "https://finance.naver.com/")

	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		chartURL:   strings.TrimRight(chartURL, "/"),
	}
}

// Name returns the provider name
func (c *Client) Name() string {
	return ProviderName
}

// fetchHTML fetches an HTML page from Naver Finance
func (c *Client) fetchHTML(ctx context.Context, path string, params url.Values) (string, error) {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	body, err := c.httpClient.GetBody(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	return decodeHTML(body)
}

// decodeHTML converts EUC-KR item pages to UTF-8; valid UTF-8 passes through
func decodeHTML(body []byte) (string, error) {
	if utf8.Valid(body) {
		return string(body), nil
	}
	decoded, err := korean.EUCKR.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode EUC-KR: %w", err)
	}
	return string(decoded), nil
}
