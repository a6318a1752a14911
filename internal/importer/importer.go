package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"draft-desk/internal/model"
	"draft-desk/internal/service"
	"draft-desk/internal/validation"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

var (
	ErrInvalidURL = errors.New("invalid article url")
	ErrFetch      = errors.New("failed to fetch article")
)

// Scraper fetches a page and extracts its readable article.
type Scraper interface {
	Scrape(url string, timeout time.Duration) (*readability.Article, error)
}

// DefaultScraper fetches over HTTP with go-readability.
type DefaultScraper struct{}

func (s *DefaultScraper) Scrape(url string, timeout time.Duration) (*readability.Article, error) {
	art, err := readability.FromURL(url, timeout)
	return &art, err
}

// Importer turns a web article into a new draft.
type Importer struct {
	drafts  *service.DraftService
	logger  *zap.Logger
	scraper Scraper
	timeout time.Duration
}

func NewImporter(drafts *service.DraftService, logger *zap.Logger, timeout time.Duration) *Importer {
	return &Importer{
		drafts:  drafts,
		logger:  logger,
		scraper: &DefaultScraper{},
		timeout: timeout,
	}
}

// Import scrapes rawURL and creates an unpublished draft from it. The draft goes
// through the same validation as any other create.
func (im *Importer) Import(ctx context.Context, rawURL string) (*model.Draft, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	logger := im.logger.With(zap.String("url", u.String()))
	logger.Info("Importing article")

	article, err := im.scraper.Scrape(u.String(), im.timeout)
	if err != nil {
		logger.Error("Scraping failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	d, err := im.drafts.Create(ctx, draftFromArticle(article, u))
	if err != nil {
		return nil, err
	}
	logger.Info("Import complete", zap.String("draft_id", d.ID))
	return d, nil
}

// Scraped fields are fitted to these limits so imports pass validation.
var rules = validation.DefaultRules()

func draftFromArticle(a *readability.Article, u *url.URL) model.DraftInput {
	title := strings.TrimSpace(a.Title)
	switch {
	case title == "":
		title = u.Hostname()
	case utf8.RuneCountInString(title) < rules.TitleMinLength:
		title = title + " (" + u.Hostname() + ")"
	}

	desc := strings.TrimSpace(a.Excerpt)
	if desc == "" {
		desc = strings.Join(strings.Fields(a.TextContent), " ")
	}
	source := "Imported from " + u.String()
	if desc == "" {
		desc = source
	} else if utf8.RuneCountInString(desc) < rules.DescriptionMinLength {
		desc = desc + " " + source
	}

	tags := []string{"imported"}
	if site := strings.TrimSpace(a.SiteName); site != "" {
		tags = append(tags, truncate(site, rules.TagMaxLength))
	}

	return model.DraftInput{
		Title:       truncate(title, rules.TitleMaxLength),
		Description: truncate(desc, rules.DescriptionMaxLength),
		Tags:        tags,
		Images:      []string{},
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
