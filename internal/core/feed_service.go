package core

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/ai-startup-tracker/tracker/internal/aggregate"
	apperrors "github.com/ai-startup-tracker/tracker/internal/errors"
	"github.com/ai-startup-tracker/tracker/internal/feed"
	"github.com/ai-startup-tracker/tracker/internal/query"
	"github.com/ai-startup-tracker/tracker/internal/store"
)

// FeedService builds the RSS channel. It relies on HTTP cache headers rather
// than the response cache.
type FeedService struct {
	store   *store.Store
	siteURL string
	now     func() time.Time
}

func NewFeedService(s *store.Store, siteURL string) *FeedService {
	return &FeedService{store: s, siteURL: siteURL, now: time.Now}
}

// Channel selects the startups for the filters in values together with their
// latest news.
func (s *FeedService) Channel(ctx context.Context, values url.Values) (*feed.Channel, error) {
	p := query.Sanitize(query.Feed(), values)
	startups, err := s.store.StartupRows(ctx, query.FeedList(p).Data())
	if err != nil {
		return nil, apperrors.NewInternal("Failed to generate feed", err)
	}

	news := aggregate.GroupNews(nil, feed.NewsPerItem)
	if len(startups) > 0 {
		names := make([]string, len(startups))
		for i, st := range startups {
			names[i] = st.Name
		}
		content, err := s.store.Content(ctx, query.NewsFor(names))
		if err != nil {
			return nil, apperrors.NewInternal("Failed to generate feed", err)
		}
		news = aggregate.GroupNews(content, feed.NewsPerItem)
	}

	ch := &feed.Channel{
		SiteURL:   s.siteURL,
		Filter:    feed.FilterDescription(p),
		BuildTime: s.now(),
		Items:     make([]feed.Item, len(startups)),
	}
	for i, st := range startups {
		ch.Items[i] = feed.Item{Startup: st, News: news.Latest(st.Name)}
	}
	return ch, nil
}

// Write renders the channel for values to w.
func (s *FeedService) Write(ctx context.Context, w io.Writer, values url.Values) error {
	ch, err := s.Channel(ctx, values)
	if err != nil {
		return err
	}
	return feed.Render(w, *ch)
}
