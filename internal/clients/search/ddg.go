package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TikTokFactCheck/internal/config"
	"TikTokFactCheck/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// ErrSearchStatus 表示搜尋端點回傳非 200 狀態碼
var ErrSearchStatus = errors.New("搜尋端點狀態碼錯誤")

const (
	defaultEndpoint = "https://html.duckduckgo.com/html/"
	defaultRegion   = "fr-fr"
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// DDGClient 以 DuckDuckGo HTML 端點搜尋並解析結果
type DDGClient struct {
	endpoint   string
	region     string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logger.Logger
}

// NewDDGClient 依設定建立客戶端；RequestsPerSecond ≤ 0 時不限速
func NewDDGClient(cfg config.SearchConfig, log logger.Logger, httpClient *http.Client) *DDGClient {
	if log == nil {
		log = logger.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 20 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &DDGClient{
		endpoint:   endpoint,
		region:     region,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		log:        log.With(logger.String("component", "search")),
	}
}

// Text 實作 Searcher
func (c *DDGClient) Text(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("等待搜尋限速失敗: %w", err)
	}

	form := url.Values{"q": {query}, "kl": {c.region}, "df": {""}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://html.duckduckgo.com/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("搜尋請求失敗: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrSearchStatus, resp.StatusCode)
	}

	results, err := parseDDGHTML(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	c.log.Debug("[Search] 搜尋完成", logger.String("query", query), logger.Int("count", len(results)))
	return results, nil
}

func parseDDGHTML(r io.Reader) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("無法解析搜尋結果 HTML: %w", err)
	}

	var results []Result
	seen := make(map[string]struct{})
	doc.Find(".result, .web-result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a, .result__title a, a.result-link").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if !ok || title == "" {
			return
		}
		href = ddgUnwrapURL(href)
		if href == "" {
			return
		}
		// .result 與 .web-result 可能同時出現在同一節點
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		results = append(results, Result{
			Title: title,
			Href:  href,
			Body:  strings.TrimSpace(s.Find(".result__snippet, .result__body").First().Text()),
		})
	})
	return results, nil
}

// ddgUnwrapURL 還原 //duckduckgo.com/l/?uddg=... 形式的轉址連結
func ddgUnwrapURL(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if uddg := u.Query().Get("uddg"); uddg != "" {
				return uddg
			}
		}
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}
