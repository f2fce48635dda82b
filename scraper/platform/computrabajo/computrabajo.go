// Package computrabajo extracts job listings from co.computrabajo.com.
package computrabajo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/scraper/browser"
	"github.com/alwedo/jobscout/scraper/platform"
	"github.com/alwedo/jobscout/search"
)

const (
	Name = "computrabajo"

	searchURL = "https://co.computrabajo.com/trabajo-de-%s-en-medellin"
	paramPage = "?p=%d"

	// linksJS collects the absolute href of every listing anchor on a
	// result page.
	linksJS = `Array.from(document.querySelectorAll('a[href^="/ofertas-de-trabajo/oferta-de-trabajo-de-"]')).map((a) => a.href)`

	// Listing page selectors. The site serves a fixed structural layout:
	// a header block with title and company line, then a detail block with
	// tag spans, a requirements list and the description paragraph.
	selTitle        = "main > div:nth-of-type(1) > h1"
	selSubtitle     = "main > div:nth-of-type(1) > p"
	selTags         = "main > div:nth-of-type(2) > div > div:nth-of-type(2) > div:nth-of-type(3) > div:nth-of-type(1) > span"
	selRequirements = "main > div:nth-of-type(2) > div > div:nth-of-type(2) > div:nth-of-type(3) > ul"
	selDescription  = "main > div:nth-of-type(2) > div > div:nth-of-type(2) > div:nth-of-type(3) > p:nth-of-type(1)"
)

type Computrabajo struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Computrabajo {
	return &Computrabajo{logger: logger}
}

func (c *Computrabajo) Name() string { return Name }

func (c *Computrabajo) URL(role string) string {
	return fmt.Sprintf(searchURL, strings.ReplaceAll(strings.ToLower(role), " ", "-"))
}

// JobLinks walks the paginated result pages for url collecting listing
// links, settling after each navigation.
func (c *Computrabajo) JobLinks(ctx context.Context, page browser.Page, url string, params platform.Params) ([]string, error) {
	var links []string
	for i := range params.Pages {
		pageURL := url + fmt.Sprintf(paramPage, i+1)
		if err := page.Goto(ctx, pageURL); err != nil {
			return nil, fmt.Errorf("unable to open result page in Computrabajo.JobLinks: %w", err)
		}

		v, err := page.Evaluate(linksJS)
		if err != nil {
			return nil, fmt.Errorf("unable to collect links in Computrabajo.JobLinks: %w", err)
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected evaluation result %T in Computrabajo.JobLinks", v)
		}
		for _, item := range items {
			if link, ok := item.(string); ok {
				links = append(links, link)
			}
		}
		c.logger.Debug("collected listing links",
			slog.String("platform", Name),
			slog.Int("page", i+1),
			slog.Int("total", len(links)))

		if err := platform.Settle(ctx, params.SettleDelay); err != nil {
			return nil, err
		}
	}
	return links, nil
}

// JobInfo extracts one record from a listing page. Missing optional fields
// (salary tag, experience line) yield empty strings; a missing title or
// subtitle fails the extraction.
func (c *Computrabajo) JobInfo(ctx context.Context, page browser.Page, url string, params platform.Params) (record.JobRecord, error) {
	if err := page.Goto(ctx, url); err != nil {
		return record.JobRecord{}, fmt.Errorf("unable to open listing in Computrabajo.JobInfo: %w", err)
	}
	if err := platform.Settle(ctx, params.SettleDelay); err != nil {
		return record.JobRecord{}, err
	}

	doc, err := platform.Document(page)
	if err != nil {
		return record.JobRecord{}, fmt.Errorf("unable to parse listing in Computrabajo.JobInfo: %w", err)
	}

	title, err := platform.FirstText(doc, selTitle)
	if err != nil {
		return record.JobRecord{}, fmt.Errorf("unable to extract title in Computrabajo.JobInfo: %w", err)
	}
	subtitle, err := platform.FirstText(doc, selSubtitle)
	if err != nil {
		return record.JobRecord{}, fmt.Errorf("unable to extract subtitle in Computrabajo.JobInfo: %w", err)
	}
	tags, err := platform.AllText(doc, selTags)
	if err != nil {
		return record.JobRecord{}, fmt.Errorf("unable to extract tags in Computrabajo.JobInfo: %w", err)
	}
	requirements, err := platform.ListItems(doc, selRequirements)
	if err != nil {
		return record.JobRecord{}, fmt.Errorf("unable to extract requirements in Computrabajo.JobInfo: %w", err)
	}
	description, err := platform.FirstText(doc, selDescription)
	if err != nil {
		return record.JobRecord{}, fmt.Errorf("unable to extract description in Computrabajo.JobInfo: %w", err)
	}

	// The company line reads "Company - Location".
	company, location, _ := strings.Cut(subtitle, "-")

	candidates := params.Tags
	if len(candidates) == 0 {
		candidates = search.DefaultTags
	}

	if err := platform.Settle(ctx, params.SettleDelay); err != nil {
		return record.JobRecord{}, err
	}

	return record.JobRecord{
		Title:        title,
		Subtitle:     subtitle,
		Tags:         tags,
		Technologies: search.Tags(description, candidates),
		Requirements: requirements,
		Company:      strings.TrimSpace(company),
		Location:     strings.TrimSpace(location),
		Salary:       firstContaining(tags, "$"),
		Experience:   firstContaining(requirements, "experiencia"),
		URL:          url,
		SearchRole:   params.Role,
	}, nil
}

// firstContaining returns the first value containing the marker, or "".
func firstContaining(values []string, marker string) string {
	for _, v := range values {
		if strings.Contains(v, marker) {
			return v
		}
	}
	return ""
}
