package images

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"barca/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() config.Config {
	cfg, _ := config.Load()
	cfg.StoreBaseURL = "https://shop.test"
	cfg.ImageRetry = 0
	cfg.ImageRateLimitRPS = 10000
	return cfg
}

func imageResponse(blob []byte) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "image/png")
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(string(blob))), Header: h}
}

func TestDecacheMagento(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{
			"https://shop.test/media/catalog/product/cache/abc123/3/0/302_AB12-xl_5.jpg",
			"https://shop.test/media/catalog/product/3/0/302_AB12-xl_5.jpg",
		},
		{
			`https:\/\/shop.test\/media\/catalog\/product\/cache\/x\/302_AB12-xl_5.jpg`,
			"https://shop.test/media/catalog/product/302_AB12-xl_5.jpg",
		},
		{
			"https://shop.test/media/302_AB12-xl_5.jpg?width=200#frag",
			"https://shop.test/media/302_AB12-xl_5.jpg",
		},
	}
	for _, c := range cases {
		if got := decacheMagento(c.in); got != c.want {
			t.Errorf("decacheMagento(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestCandidateURLs(t *testing.T) {
	client := NewClient(testConfig())
	urls := client.candidateURLs("302/AB12", 5)
	if len(urls) == 0 {
		t.Fatal("no candidates")
	}
	if urls[0] != "https://shop.test/media/302_AB12-xl_5.jpg" {
		t.Fatalf("first candidate %q", urls[0])
	}

	seen := map[string]struct{}{}
	for _, u := range urls {
		if strings.Contains(u, "302/AB12") {
			t.Fatalf("slash survived in %q", u)
		}
		if _, dup := seen[u]; dup {
			t.Fatalf("duplicate candidate %q", u)
		}
		seen[u] = struct{}{}
	}
}

func TestFetchBestDirectHit(t *testing.T) {
	blob := pngBytes(t, noisyImage(120, 120))

	client := NewClient(testConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get("User-Agent") == "" {
				t.Fatal("missing user agent")
			}
			return imageResponse(blob), nil
		}),
	}

	u, got, miss := client.FetchBest(context.Background(), "302/AB12")
	if miss != "" {
		t.Fatalf("miss=%q", miss)
	}
	if len(got) != len(blob) {
		t.Fatalf("blob size %d want %d", len(got), len(blob))
	}
	if !strings.Contains(u, "302_AB12-xl_5.jpg") {
		t.Fatalf("url %q", u)
	}
}

func TestDownloadRejectsNonImage(t *testing.T) {
	client := NewClient(testConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			h := make(http.Header)
			h.Set("Content-Type", "text/html")
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("<html></html>")), Header: h}, nil
		}),
	}
	if blob := client.download(context.Background(), "https://shop.test/media/x.jpg"); blob != nil {
		t.Fatal("html accepted as image")
	}
}

func TestFetchFromSearchPage(t *testing.T) {
	blob := pngBytes(t, noisyImage(120, 120))
	page := `<html><head>
<meta property="og:image" content="https://shop.test/media/catalog/product/cache/abc/3/0/302_AB12-xl_5.jpg"/>
</head><body></body></html>`

	client := NewClient(testConfig())
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if strings.Contains(r.URL.Path, "catalogsearch") {
				if r.URL.Query().Get("q") != "302/AB12" {
					t.Fatalf("query %q", r.URL.RawQuery)
				}
				h := make(http.Header)
				h.Set("Content-Type", "text/html")
				return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(page)), Header: h}, nil
			}
			if strings.Contains(r.URL.Path, "/cache/") {
				t.Fatalf("cache url not rewritten: %s", r.URL)
			}
			return imageResponse(blob), nil
		}),
	}

	u, got := client.fetchFromSearchPage(context.Background(), "302/AB12")
	if got == nil {
		t.Fatal("no image from search page")
	}
	if u != "https://shop.test/media/catalog/product/3/0/302_AB12-xl_5.jpg" {
		t.Fatalf("url %q", u)
	}
}
