package feed

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"newsingest/internal/domain"
	"newsingest/internal/ports"
)

// Parser converts raw RSS 2.0 / Atom text into RawItems. Both formats go
// through the same entry point; malformed XML rejects the whole feed.
type Parser struct {
	logger *slog.Logger
}

var _ ports.FeedParser = (*Parser)(nil)

// NewParser builds a parser; the logger records dropped items.
func NewParser(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.Default()
	}
	return &Parser{logger: log}
}

// Parse extracts all items carrying both a title and a link. Items missing
// either are dropped, not errored; absent dates are tolerated and defaulted
// downstream.
func (p *Parser) Parse(raw string) ([]domain.RawItem, error) {
	parsed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.RawItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		item, ok := p.toRawItem(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

// ParseInfo extracts feed-level metadata without touching items, for
// lightweight feed-info lookups.
func (p *Parser) ParseInfo(raw string) (domain.FeedInfo, error) {
	parsed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return domain.FeedInfo{}, fmt.Errorf("parse feed info: %w", err)
	}

	return domain.FeedInfo{
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.TrimSpace(parsed.Description),
		Link:        strings.TrimSpace(parsed.Link),
		Language:    strings.TrimSpace(parsed.Language),
	}, nil
}

func (p *Parser) toRawItem(entry *gofeed.Item) (domain.RawItem, bool) {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" {
		p.logger.Debug("dropping item without title", "link", link)
		return domain.RawItem{}, false
	}
	if link == "" {
		p.logger.Debug("dropping item without link", "title", title)
		return domain.RawItem{}, false
	}

	item := domain.RawItem{
		Title:       title,
		Description: strings.TrimSpace(entry.Description),
		Content:     strings.TrimSpace(entry.Content),
		Link:        link,
		Published:   strings.TrimSpace(entry.Published),
		PublishedAt: entry.PublishedParsed,
		Categories:  entry.Categories,
	}
	if item.Published == "" {
		item.Published = strings.TrimSpace(entry.Updated)
	}
	if item.PublishedAt == nil {
		item.PublishedAt = entry.UpdatedParsed
	}

	item.MediaContentURL = mediaAttr(entry, "content", "url")
	item.MediaThumbnailURL = mediaAttr(entry, "thumbnail", "url")

	// Enclosure priority: <enclosure>, then media:content, then
	// media:thumbnail; only the first match is captured.
	switch {
	case len(entry.Enclosures) > 0 && entry.Enclosures[0].URL != "":
		item.EnclosureURL = entry.Enclosures[0].URL
		item.EnclosureType = entry.Enclosures[0].Type
	case item.MediaContentURL != "":
		item.EnclosureURL = item.MediaContentURL
		item.EnclosureType = mediaAttr(entry, "content", "type")
	case item.MediaThumbnailURL != "":
		item.EnclosureURL = item.MediaThumbnailURL
	}

	return item, true
}

func mediaAttr(entry *gofeed.Item, element, attr string) string {
	media, ok := entry.Extensions["media"]
	if !ok {
		return ""
	}
	for _, ext := range media[element] {
		if v := strings.TrimSpace(ext.Attrs[attr]); v != "" {
			return v
		}
	}
	return ""
}
