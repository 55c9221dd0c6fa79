// file: internal/metadata/changpei.go
// version: 1.1.0
// guid: 2f8c6d1a-9e4b-4b7c-a3d2-6e0f1b8c5d97

package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/oovz/calibre-changpei/internal/metrics"
	"github.com/tidwall/gjson"
)

const (
	// ProviderID is the identifier key the host stores catalog ids under.
	ProviderID = "changpei"
	// SourcePublisher is both the display name and the publisher of every record.
	SourcePublisher = "长佩文学"
	// SourceLanguage is the language of every record.
	SourceLanguage = "zh_CN"

	// DefaultBaseURL is the catalog site. The web API lives under /webapi.
	DefaultBaseURL = "https://www.gongzicp.com"
	// NoCoverURL is used when the catalog has no cover for a book.
	NoCoverURL = "https://resourcecp-cdn.gongzicp.com/files/images/nocover.jpg"

	// DefaultTimeout applies when the host passes no timeout.
	DefaultTimeout = 30 * time.Second

	bookURLFormat    = DefaultBaseURL + "/novel-%s.html"
	smallCoverSuffix = "?x-oss-process=style/small"
)

var bookURLPattern = regexp.MustCompile(`\.gongzicp\.com/novel-(\d+)\.html`)

// Changpei fetches metadata and covers from the Changpei (gongzicp.com) web API.
type Changpei struct {
	httpClient HTTPClient
	baseURL    string
}

// NewChangpeiClient creates a client for the public catalog. CHANGPEI_BASE_URL
// overrides the API host.
func NewChangpeiClient() *Changpei {
	baseURL := os.Getenv("CHANGPEI_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return NewChangpeiClientWithBaseURL(baseURL)
}

// NewChangpeiClientWithBaseURL creates a client with a custom base URL.
func NewChangpeiClientWithBaseURL(baseURL string) *Changpei {
	return NewChangpei(NewStdHTTPClient(&http.Client{}, ""), baseURL)
}

// NewChangpei creates a client using an injected HTTP collaborator.
func NewChangpei(client HTTPClient, baseURL string) *Changpei {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Changpei{
		httpClient: client,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name returns the display name for this metadata source.
func (c *Changpei) Name() string {
	return SourcePublisher
}

func (c *Changpei) novelInfoURL(id string) string {
	return fmt.Sprintf("%s/webapi/novel/novelInfo?id=%s", c.baseURL, url.QueryEscape(id))
}

func (c *Changpei) chapterListURL(id string) string {
	return fmt.Sprintf("%s/webapi/novel/chapterGetList?nid=%s", c.baseURL, url.QueryEscape(id))
}

func (c *Changpei) searchURL(title string) string {
	return fmt.Sprintf("%s/webapi/search/novels?k=%s&page=1", c.baseURL, url.QueryEscape(title))
}

// BookURL returns the canonical catalog page for id.
func BookURL(id string) string {
	return fmt.Sprintf(bookURLFormat, id)
}

// get performs one upstream request and records it under endpoint.
func (c *Changpei) get(ctx context.Context, endpoint, rawURL string, timeout time.Duration) ([]byte, error) {
	start := time.Now()
	body, err := c.httpClient.Get(ctx, rawURL, timeout)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ObserveUpstreamRequest(endpoint, outcome, time.Since(start))
	return body, err
}

// novelInfo is the subset of the detail payload the source uses.
type novelInfo struct {
	Title       string
	Author      string
	Description string
	Tags        []string
	Cover       string
}

func (c *Changpei) fetchNovelInfo(ctx context.Context, id string, timeout time.Duration) (novelInfo, error) {
	raw, err := c.get(ctx, "novel_info", c.novelInfoURL(id), timeout)
	if err != nil {
		return novelInfo{}, err
	}
	data, err := parseEnvelope(raw)
	if err != nil {
		return novelInfo{}, fmt.Errorf("novel info for %s: %w", id, err)
	}

	info := novelInfo{
		Title:       stringField(data, "novel_name", ""),
		Author:      stringField(data, "author_nickname", ""),
		Description: stringField(data, "novel_info", ""),
		Tags:        stringsField(data, "tag_list"),
		Cover:       stringField(data, "novel_cover", ""),
	}
	if info.Description == "" {
		info.Description = stringField(data, "novel_desc", "")
	}
	return info, nil
}

// lookupResult is the outcome of a detail lookup. DateErr records a failed
// publish-date enrichment, which never fails the lookup itself.
type lookupResult struct {
	Record  CandidateRecord
	DateErr error
}

func (c *Changpei) lookup(ctx context.Context, id string, timeout time.Duration) (lookupResult, error) {
	info, err := c.fetchNovelInfo(ctx, id, timeout)
	if err != nil {
		return lookupResult{}, err
	}

	cover := info.Cover
	if cover == "" {
		cover = NoCoverURL
	}

	pubDate, dateErr := c.firstChapterDate(ctx, id, timeout)

	return lookupResult{
		Record: CandidateRecord{
			Title:       info.Title,
			Authors:     authorList(info.Author),
			Identifiers: map[string]string{ProviderID: id},
			Comments:    info.Description,
			Publisher:   SourcePublisher,
			Language:    SourceLanguage,
			Tags:        info.Tags,
			URL:         BookURL(id),
			CoverURL:    cover,
			PubDate:     pubDate,
		},
		DateErr: dateErr,
	}, nil
}

// searchResult is one page of search hits. Skipped holds the list positions of
// hits dropped for lacking an id.
type searchResult struct {
	Query    string
	Total    int
	PageSize int
	Records  []CandidateRecord
	Skipped  []int
}

func (c *Changpei) search(ctx context.Context, title string, timeout time.Duration) (searchResult, error) {
	query := NormalizeQuery(title)
	raw, err := c.get(ctx, "search", c.searchURL(query), timeout)
	if err != nil {
		return searchResult{Query: query}, err
	}
	data, err := parseEnvelope(raw)
	if err != nil {
		return searchResult{Query: query}, fmt.Errorf("search %q: %w", query, err)
	}
	hits, err := listField(data, "list")
	if err != nil {
		return searchResult{Query: query}, fmt.Errorf("search %q: %w", query, err)
	}

	res := searchResult{
		Query:    query,
		Total:    intField(data, "count", len(hits)),
		PageSize: len(hits),
		Records:  make([]CandidateRecord, 0, len(hits)),
	}
	for i, hit := range hits {
		id, ok := hitID(hit)
		if !ok {
			res.Skipped = append(res.Skipped, i)
			continue
		}
		res.Records = append(res.Records, hitToRecord(id, hit))
	}
	return res, nil
}

// hitID returns the id of a search hit. Missing ids, empty strings and the
// number 0 count as absent; the string "0" is a real id.
func hitID(hit gjson.Result) (string, bool) {
	v := hit.Get("novel_id")
	switch v.Type {
	case gjson.String:
		return v.Str, v.Str != ""
	case gjson.Number:
		return v.Raw, v.Num != 0
	default:
		return "", false
	}
}

func hitToRecord(id string, hit gjson.Result) CandidateRecord {
	cover := NormalizeCoverURL(stringField(hit, "novel_cover", ""))
	if cover == "" {
		cover = NoCoverURL
	}
	return CandidateRecord{
		Title:       stringField(hit, "novel_name", ""),
		Authors:     authorList(stringField(hit, "novel_author", "")),
		Identifiers: map[string]string{ProviderID: id},
		Comments:    stringField(hit, "novel_desc", ""),
		Publisher:   SourcePublisher,
		Language:    SourceLanguage,
		Tags:        stringsField(hit, "novel_tag_arr"),
		URL:         BookURL(id),
		CoverURL:    cover,
	}
}

func authorList(author string) []string {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil
	}
	return []string{author}
}

// NormalizeCoverURL strips the thumbnail style suffix from a cover URL. It is
// idempotent.
func NormalizeCoverURL(cover string) string {
	if i := strings.Index(cover, smallCoverSuffix); i >= 0 {
		return cover[:i]
	}
	return cover
}

// IDFromURL extracts a catalog id from a book page URL. Exactly one match is
// required.
func (c *Changpei) IDFromURL(rawURL string) (string, bool) {
	matches := bookURLPattern.FindAllStringSubmatch(rawURL, -1)
	if len(matches) != 1 {
		return "", false
	}
	return matches[0][1], true
}

// GetBookURL returns the page for the catalog id in identifiers.
func (c *Changpei) GetBookURL(identifiers map[string]string) (string, string, string, bool) {
	id := identifiers[ProviderID]
	if id == "" {
		return "", "", "", false
	}
	return ProviderID, id, BookURL(id), true
}

// GetBookURLName names the site a book URL points at.
func (c *Changpei) GetBookURLName(idType, idValue, url string) string {
	return SourcePublisher
}

// GetCachedCoverURL always returns "": the catalog has no stable cover URL
// derivable from an id.
func (c *Changpei) GetCachedCoverURL(identifiers map[string]string) string {
	return ""
}
