package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"barca/internal"
	"barca/internal/config"
)

// xl_5 is usually the clean studio shot; the rest are fallback views.
var preferXLOrder = []int{5, 2, 1, 3, 4, 6, 7, 8, 9}

var reMagentoCache = regexp.MustCompile(`(/media/catalog/product)/cache/[^/]+/`)

// Fetcher is the image-fetch capability consumed by the catalog generator:
// given an article code, image bytes or a symbolic miss reason.
type Fetcher interface {
	FetchBest(ctx context.Context, code string) (url string, blob []byte, missReason string)
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

var _ Fetcher = (*Client)(nil)

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.ImageTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.ImageRateLimitRPS),
	}
}

// FetchBest walks the direct media URL candidates in view order, then falls
// back to scraping the product search page. A miss is reported as a reason
// string, never an error: one code's failure must not disturb the batch.
func (c *Client) FetchBest(ctx context.Context, code string) (string, []byte, string) {
	reason := internal.MissNotFound
	for _, xl := range preferXLOrder {
		for _, u := range c.candidateURLs(code, xl) {
			blob := c.download(ctx, u)
			if blob == nil {
				reason = internal.MissDownloadFailed
				continue
			}
			if IsPlaceholder(blob) {
				reason = internal.MissPlaceholder
				continue
			}
			return u, blob, ""
		}
	}

	if u, blob := c.fetchFromSearchPage(ctx, code); blob != nil {
		return u, blob, ""
	}
	return "", nil, reason
}

func (c *Client) candidateURLs(code string, xlNum int) []string {
	prefix := mediaPrefix(code)
	names := []string{
		fmt.Sprintf("%s-xl_%d.jpg", prefix, xlNum),
		fmt.Sprintf("%s-xl_%d_1.jpg", prefix, xlNum),
		fmt.Sprintf("%s-xl_%d_2.jpg", prefix, xlNum),
	}

	base := strings.TrimRight(c.cfg.StoreBaseURL, "/")
	bases := []string{
		base + "/media/",
		base + "/media/catalog/product/",
		base + "/media/catalog/product/cache/",
		base + "/media/catalog/product/cache/1/",
		base + "/media/catalog/product/cache/2/",
		base + "/media/catalog/product/cache/3/",
	}

	// Magento also shards media under the first two letters of the name.
	a := "x"
	b := "x"
	if len(prefix) > 0 {
		a = strings.ToLower(prefix[:1])
	}
	if len(prefix) > 1 {
		b = strings.ToLower(prefix[1:2])
	}

	out := []string{}
	seen := map[string]struct{}{}
	add := func(u string) {
		u = decacheMagento(u)
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	for _, b0 := range bases {
		for _, n := range names {
			add(b0 + n)
		}
		for _, n := range names {
			add(fmt.Sprintf("%s%s/%s/%s", b0, a, b, n))
		}
	}
	return out
}

func (c *Client) download(ctx context.Context, rawURL string) []byte {
	for attempt := 0; attempt <= c.cfg.ImageRetry; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil
		}
		req.Header.Set("User-Agent", c.cfg.StoreUserAgent)
		req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
		req.Header.Set("Referer", strings.TrimRight(c.cfg.StoreBaseURL, "/")+"/")

		resp, err := c.httpClient.Do(req)
		if err == nil {
			blob, readErr := readBody(resp)
			if readErr == nil && resp.StatusCode == http.StatusOK && len(blob) > 0 && isImageResponse(resp) {
				return blob
			}
		}
		if ctx.Err() != nil {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return nil
}

// fetchFromSearchPage scrapes the storefront search results for an og:image
// or product thumbnail when no direct media URL worked.
func (c *Client) fetchFromSearchPage(ctx context.Context, code string) (string, []byte) {
	pageURL := strings.TrimRight(c.cfg.StoreBaseURL, "/") +
		"/catalogsearch/result/?q=" + url.QueryEscape(code)

	c.limiter.WaitTurn()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", nil
	}
	req.Header.Set("User-Agent", c.cfg.StoreUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", nil
	}

	candidates := []string{}
	if v, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	doc.Find("img.product-image-photo").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("src"); ok {
			candidates = append(candidates, v)
		}
		return len(candidates) < 4
	})

	for _, u := range candidates {
		u = decacheMagento(u)
		blob := c.download(ctx, u)
		if blob != nil && !IsPlaceholder(blob) {
			return u, blob
		}
	}
	return "", nil
}

func mediaPrefix(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), "/", "_")
}

func decacheMagento(rawURL string) string {
	u := strings.ReplaceAll(rawURL, `\/`, "/")
	u = stripQuery(u)
	return reMagentoCache.ReplaceAllString(u, "$1/")
}

func stripQuery(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func isImageResponse(resp *http.Response) bool {
	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "image/")
}
