// file: internal/metadata/resolver.go
// version: 1.1.0
// guid: 4c7e1a9d-6b2f-4e3a-9d8c-5a1b7f3e2c09

package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oovz/calibre-changpei/internal/metrics"
)

var _ Source = (*Changpei)(nil)

// Descriptor declares the source to the host.
func (c *Changpei) Descriptor() Descriptor {
	return Descriptor{
		Name:               SourcePublisher,
		Description:        "Downloads metadata and covers from Changpei (gongzicp.com).",
		Author:             "Otaro",
		Version:            Version{1, 0, 0},
		MinimumHostVersion: Version{5, 0, 0},
		SupportedPlatforms: []string{"windows", "osx", "linux"},
		Capabilities:       []Capability{CapabilityIdentify, CapabilityCover},
		TouchedFields: []string{
			"title",
			"authors",
			"identifier:" + ProviderID,
			"comments",
			"publisher",
			"languages",
			"tags",
			"pubdate",
		},
		HasHTMLComments:      true,
		SupportsGzip:         true,
		CanGetMultipleCovers: true,
	}
}

// Identify looks the book up by its catalog id when the identifiers carry one,
// and searches by title otherwise. A failed id lookup does not fall back to search.
func (c *Changpei) Identify(ctx context.Context, logger *slog.Logger, sink Sink[CandidateRecord], req IdentifyRequest) {
	if id := req.Identifiers[ProviderID]; id != "" {
		c.LookupByID(ctx, logger, sink, id, req.Timeout)
		return
	}
	c.SearchByTitle(ctx, logger, sink, req.Title, req.Timeout)
}

// LookupByID fetches full details for a catalog id and appends at most one
// record to sink. Failures are logged and produce nothing.
func (c *Changpei) LookupByID(ctx context.Context, logger *slog.Logger, sink Sink[CandidateRecord], id string, timeout time.Duration) {
	logger = loggerOrDefault(logger)
	timeout = effectiveTimeout(timeout)
	ctx = context.WithoutCancel(ctx)
	done := trackOperation("lookup")

	if id == "" {
		logger.Error("lookup requires a catalog id")
		done(opFailed)
		return
	}

	logger.Info("identify with changpei id", "id", id, "url", c.novelInfoURL(id))
	res, err := c.lookup(ctx, id, timeout)
	if err != nil {
		logger.Error("novel info lookup failed", "id", id, "error", err)
		done(opFailed)
		return
	}

	switch {
	case res.DateErr != nil:
		logger.Warn("first chapter publish date unavailable", "id", id, "error", res.DateErr)
	case res.Record.PubDate != nil:
		logger.Info("first chapter publish date", "id", id, "pubdate", res.Record.PubDate.Format(PublishDateLayout))
	default:
		logger.Info("no published chapters", "id", id)
	}

	sink.Put(res.Record)
	metrics.AddRecords("lookup", 1)
	done(opOK)
}

// SearchByTitle appends the first page of search hits to sink in the order the
// catalog ranked them. Hits without an id are logged and skipped.
func (c *Changpei) SearchByTitle(ctx context.Context, logger *slog.Logger, sink Sink[CandidateRecord], title string, timeout time.Duration) {
	logger = loggerOrDefault(logger)
	timeout = effectiveTimeout(timeout)
	ctx = context.WithoutCancel(ctx)
	done := trackOperation("search")

	logger.Info("search with title", "title", title, "url", c.searchURL(NormalizeQuery(title)))
	res, err := c.search(ctx, title, timeout)
	if err != nil {
		logger.Error("search failed", "title", title, "error", err)
		done(opFailed)
		return
	}

	logger.Info("search results", "total", res.Total, "page_size", res.PageSize)
	for _, i := range res.Skipped {
		logger.Error("search hit has no book id", "index", i)
	}
	metrics.AddSkippedHits(len(res.Skipped))

	for rank, rec := range res.Records {
		logger.Info("search hit", "rank", rank, "id", rec.ID(), "title", rec.Title, "authors", rec.Authors)
		sink.Put(rec)
	}
	metrics.AddRecords("search", len(res.Records))
	done(opOK)
}

// DownloadCover appends at most one cover to sink. Without a catalog id it runs
// identify first and uses the top-ranked result. Cancellation is checked once,
// before that nested identify; requests already started run to completion.
func (c *Changpei) DownloadCover(ctx context.Context, logger *slog.Logger, sink Sink[Cover], req IdentifyRequest) {
	logger = loggerOrDefault(logger)
	timeout := effectiveTimeout(req.Timeout)
	done := trackOperation("cover")

	id := req.Identifiers[ProviderID]
	if id == "" {
		if ctx.Err() != nil {
			logger.Info("cover download aborted before identify")
			done(opCanceled)
			return
		}
		logger.Info("no id found, running identify")
		resolved, err := c.resolveID(ctx, logger, req, timeout)
		if err != nil {
			logger.Error("cannot resolve book id for cover", "title", req.Title, "error", err)
			done(opFailed)
			return
		}
		id = resolved
	}

	data, err := c.fetchCover(context.WithoutCancel(ctx), id, timeout)
	if err != nil {
		logger.Error("cover download failed", "id", id, "error", err)
		metrics.IncCoverDownloads("error")
		done(opFailed)
		return
	}

	sink.Put(Cover{Owner: c, Data: data, BookID: id})
	metrics.IncCoverDownloads("ok")
	done(opOK)
}

// resolveID runs identify into a private queue and returns the id of the first
// result.
func (c *Changpei) resolveID(ctx context.Context, logger *slog.Logger, req IdentifyRequest, timeout time.Duration) (string, error) {
	q := NewQueue[CandidateRecord]()
	c.Identify(ctx, logger, q, IdentifyRequest{
		Title:   req.Title,
		Authors: req.Authors,
		Timeout: timeout,
	})
	results := q.Drain()
	if len(results) == 0 {
		return "", fmt.Errorf("identify for %q: %w", req.Title, ErrNoResults)
	}
	id := results[0].ID()
	if id == "" {
		return "", fmt.Errorf("identify for %q: first result has no id: %w", req.Title, ErrNoResults)
	}
	return id, nil
}

// fetchCover reads the cover URL from the detail payload and downloads it.
func (c *Changpei) fetchCover(ctx context.Context, id string, timeout time.Duration) ([]byte, error) {
	info, err := c.fetchNovelInfo(ctx, id, timeout)
	if err != nil {
		return nil, err
	}
	if info.Cover == "" {
		return nil, fmt.Errorf("novel %s: %w", id, ErrNoCover)
	}
	data, err := c.get(ctx, "cover", info.Cover, timeout)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("novel %s: empty image at %s: %w", id, info.Cover, ErrNoCover)
	}
	return data, nil
}

type opOutcome int

const (
	opOK opOutcome = iota
	opFailed
	opCanceled
)

// trackOperation records the start of an operation and returns a func that
// records its outcome and duration.
func trackOperation(opType string) func(opOutcome) {
	metrics.IncOperationStarted(opType)
	start := time.Now()
	return func(outcome opOutcome) {
		metrics.ObserveOperationDuration(opType, time.Since(start))
		switch outcome {
		case opOK:
			metrics.IncOperationCompleted(opType)
		case opCanceled:
			metrics.IncOperationCanceled(opType)
		default:
			metrics.IncOperationFailed(opType)
		}
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func effectiveTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultTimeout
	}
	return timeout
}
