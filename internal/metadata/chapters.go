// file: internal/metadata/chapters.go
// version: 1.0.0
// guid: 9a3d5f7c-2b1e-4c8a-b6f4-0e7d3a9c1b28

package metadata

import (
	"context"
	"fmt"
	"time"
)

// PublishDateLayout is the layout of chapter publish timestamps.
const PublishDateLayout = "2006-01-02 15:04:05"

// catalogZone is the zone chapter timestamps are written in (China Standard Time).
var catalogZone = time.FixedZone("CST", 8*60*60)

const chapterTypeItem = "item"

type chapterEntry struct {
	Order      string
	Type       string
	PublicDate string
}

// pickFirstChapter returns the entry with order "1" that is a real chapter.
// Failing that it returns the first real chapter in list order.
func pickFirstChapter(chapters []chapterEntry) (chapterEntry, bool) {
	for _, ch := range chapters {
		if ch.Order == "1" && ch.Type == chapterTypeItem {
			return ch, true
		}
	}
	for _, ch := range chapters {
		if ch.Type == chapterTypeItem {
			return ch, true
		}
	}
	return chapterEntry{}, false
}

func parsePublishDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(PublishDateLayout, s, catalogZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %w", ErrDateParse, s, err)
	}
	return t, nil
}

// firstChapterDate returns the publish date of the book's first chapter. A nil
// date with a nil error means the book has no published chapter with a date.
func (c *Changpei) firstChapterDate(ctx context.Context, id string, timeout time.Duration) (*time.Time, error) {
	raw, err := c.get(ctx, "chapter_list", c.chapterListURL(id), timeout)
	if err != nil {
		return nil, err
	}
	data, err := parseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("chapter list for %s: %w", id, err)
	}
	list, err := listField(data, "list")
	if err != nil {
		return nil, fmt.Errorf("chapter list for %s: %w", id, err)
	}

	chapters := make([]chapterEntry, 0, len(list))
	for _, item := range list {
		chapters = append(chapters, chapterEntry{
			Order:      stringField(item, "order", ""),
			Type:       stringField(item, "type", ""),
			PublicDate: stringField(item, "public_date", ""),
		})
	}

	first, ok := pickFirstChapter(chapters)
	if !ok || first.PublicDate == "" {
		return nil, nil
	}
	t, err := parsePublishDate(first.PublicDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
