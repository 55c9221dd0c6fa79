// file: internal/metadata/changpei_test.go
// version: 1.0.0
// guid: 2b3c4d5e-6f7a-8b9c-0d1e-2f3a4b5c6d7e

package metadata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewChangpeiClient(t *testing.T) {
	t.Setenv("CHANGPEI_BASE_URL", "")
	client := NewChangpeiClient()
	if client == nil {
		t.Fatal("Expected non-nil client")
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("Expected baseURL %s, got %s", DefaultBaseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Fatal("Expected non-nil HTTP client")
	}
	if client.Name() != "长佩文学" {
		t.Errorf("unexpected name %q", client.Name())
	}
}

func TestNewChangpeiClientUsesEnvBaseURL(t *testing.T) {
	t.Setenv("CHANGPEI_BASE_URL", "http://localhost:9999/")
	client := NewChangpeiClient()
	if client.baseURL != "http://localhost:9999" {
		t.Errorf("Expected baseURL from env without trailing slash, got %s", client.baseURL)
	}
}

func TestEndpointURLs(t *testing.T) {
	c := NewChangpei(newFakeHTTP(), "https://www.gongzicp.com/")
	if got := c.novelInfoURL("1312354"); got != "https://www.gongzicp.com/webapi/novel/novelInfo?id=1312354" {
		t.Errorf("novel info URL: %s", got)
	}
	if got := c.chapterListURL("1312354"); got != "https://www.gongzicp.com/webapi/novel/chapterGetList?nid=1312354" {
		t.Errorf("chapter list URL: %s", got)
	}
	if got := c.searchURL("降水 概率"); got != "https://www.gongzicp.com/webapi/search/novels?k=%E9%99%8D%E6%B0%B4+%E6%A6%82%E7%8E%87&page=1" {
		t.Errorf("search URL: %s", got)
	}
	if got := BookURL("154936"); got != "https://www.gongzicp.com/novel-154936.html" {
		t.Errorf("book URL: %s", got)
	}
}

func TestNormalizeCoverURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://cdn.test/a.jpg?x-oss-process=style/small", "https://cdn.test/a.jpg"},
		{"https://cdn.test/a.jpg?x-oss-process=style/small&v=2", "https://cdn.test/a.jpg"},
		{"https://cdn.test/a.jpg", "https://cdn.test/a.jpg"},
		{"https://cdn.test/a.jpg?x-oss-process=style/large", "https://cdn.test/a.jpg?x-oss-process=style/large"},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeCoverURL(tt.in)
		if got != tt.want {
			t.Errorf("NormalizeCoverURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := NormalizeCoverURL(got); again != got {
			t.Errorf("NormalizeCoverURL not idempotent for %q: %q then %q", tt.in, got, again)
		}
	}
}

func TestIDFromURL(t *testing.T) {
	c := NewChangpei(newFakeHTTP(), "")
	tests := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://www.gongzicp.com/novel-1312354.html", "1312354", true},
		{"https://m.gongzicp.com/novel-154936.html?from=share", "154936", true},
		{"https://www.gongzicp.com/read-1312354.html", "", false},
		{"https://www.example.com/novel-1.html", "", false},
		{"https://www.gongzicp.com/novel-1.html https://www.gongzicp.com/novel-2.html", "", false},
	}
	for _, tt := range tests {
		got, ok := c.IDFromURL(tt.url)
		if got != tt.want || ok != tt.ok {
			t.Errorf("IDFromURL(%q) = %q, %v; want %q, %v", tt.url, got, ok, tt.want, tt.ok)
		}
	}
}

func TestGetBookURL(t *testing.T) {
	c := NewChangpei(newFakeHTTP(), "")
	idType, idVal, url, ok := c.GetBookURL(map[string]string{ProviderID: "1312354", "isbn": "x"})
	if !ok || idType != ProviderID || idVal != "1312354" || url != "https://www.gongzicp.com/novel-1312354.html" {
		t.Errorf("unexpected GetBookURL result: %q %q %q %v", idType, idVal, url, ok)
	}
	if _, _, _, ok := c.GetBookURL(map[string]string{"isbn": "x"}); ok {
		t.Error("expected no URL without a changpei id")
	}
	if name := c.GetBookURLName(idType, idVal, url); name != SourcePublisher {
		t.Errorf("unexpected URL name %q", name)
	}
	if got := c.GetCachedCoverURL(map[string]string{ProviderID: "1312354"}); got != "" {
		t.Errorf("expected no cached cover URL, got %q", got)
	}
}

// newCatalogServer serves the three JSON endpoints and a cover image.
func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/webapi/novel/novelInfo":
			if r.URL.Query().Get("id") != "1312354" {
				_, _ = w.Write([]byte(`{"code":404,"msg":"作品不存在"}`))
				return
			}
			fmt.Fprintf(w, `{"code":200,"data":{"novel_name":"降水概率百分百","author_nickname":"芥菜糊糊","novel_info":"简介","tag_list":["小甜饼","年下","he","甜宠"],"novel_cover":"%s/cover/1312354.jpg"}}`, srv.URL)
		case "/webapi/novel/chapterGetList":
			_, _ = w.Write([]byte(chapters1312354))
		case "/webapi/search/novels":
			if r.URL.Query().Get("k") != "降水" || r.URL.Query().Get("page") != "1" {
				_, _ = w.Write([]byte(`{"code":200,"data":{"count":0,"list":[]}}`))
				return
			}
			_, _ = w.Write([]byte(searchRain))
		case "/cover/1312354.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestChangpei_AgainstHTTPServer(t *testing.T) {
	srv := newCatalogServer(t)
	src := NewChangpeiClientWithBaseURL(srv.URL)
	ctx := context.Background()

	records := NewQueue[CandidateRecord]()
	src.Identify(ctx, discardLogger(), records, IdentifyRequest{Identifiers: map[string]string{ProviderID: "1312354"}})
	got := records.Drain()
	if len(got) != 1 || got[0].Title != "降水概率百分百" || got[0].PubDate == nil {
		t.Fatalf("unexpected lookup result: %+v", got)
	}

	src.Identify(ctx, discardLogger(), records, IdentifyRequest{Title: "降水"})
	got = records.Drain()
	if len(got) != 2 || got[0].Title != "降水概率百分百" || got[0].Authors[0] != "芥菜糊糊" {
		t.Fatalf("unexpected search result: %+v", got)
	}

	covers := NewQueue[Cover]()
	src.DownloadCover(ctx, discardLogger(), covers, IdentifyRequest{Title: "降水"})
	gotCovers := covers.Drain()
	if len(gotCovers) != 1 || DetectCoverType(gotCovers[0].Data) != "image/jpeg" {
		t.Fatalf("unexpected cover result: %+v", gotCovers)
	}
}

func TestStdHTTPClient(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("body"))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte("late"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewStdHTTPClient(srv.Client(), "test-agent/1.0")

	body, err := client.Get(context.Background(), srv.URL+"/ok", time.Second)
	if err != nil || string(body) != "body" {
		t.Fatalf("unexpected result %q, %v", body, err)
	}
	if ua, _ := gotUA.Load().(string); ua != "test-agent/1.0" {
		t.Errorf("expected user agent to be sent, got %q", ua)
	}

	_, err = client.Get(context.Background(), srv.URL+"/fail", time.Second)
	if !errors.Is(err, ErrTransport) || !strings.Contains(err.Error(), "500") {
		t.Errorf("expected transport error with status, got %v", err)
	}

	_, err = client.Get(context.Background(), srv.URL+"/slow", 20*time.Millisecond)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected timeout to be a transport error, got %v", err)
	}
}

func TestStdHTTPClient_NetworkError(t *testing.T) {
	client := NewStdHTTPClient(nil, "")
	_, err := client.Get(context.Background(), "http://invalid.localhost:99999", time.Second)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected transport error, got %v", err)
	}
}
