package platform

import (
	"context"

	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/scraper/browser"
)

// MockPlatform is a scripted strategy for queue and scraper tests.
type MockPlatform struct {
	PlatformName string
	Links        []string
	Records      map[string]record.JobRecord
	LinksErr     error
	InfoErr      map[string]error // per-link extraction failures
}

func (m *MockPlatform) Name() string { return m.PlatformName }

func (m *MockPlatform) URL(role string) string {
	return "https://example.com/search?role=" + role
}

func (m *MockPlatform) JobLinks(context.Context, browser.Page, string, Params) ([]string, error) {
	if m.LinksErr != nil {
		return nil, m.LinksErr
	}
	return m.Links, nil
}

func (m *MockPlatform) JobInfo(_ context.Context, _ browser.Page, url string, _ Params) (record.JobRecord, error) {
	if err := m.InfoErr[url]; err != nil {
		return record.JobRecord{}, err
	}
	return m.Records[url], nil
}
