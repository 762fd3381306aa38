package dining

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Scrape fetches a venue listing page and reads every ".location" card:
//
//	<div class="location" data-off-campus>
//	  <h3 class="name">…</h3><p class="description">…</p><p class="hours">…</p>
//	</div>
func Scrape(ctx context.Context, client *http.Client, url string) (*Dataset, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dining listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch dining listing: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var locs []Location
	doc.Find(".location").Each(func(_ int, s *goquery.Selection) {
		name := cleanText(s.Find(".name").First().Text())
		if name == "" {
			return
		}
		_, offCampus := s.Attr("data-off-campus")
		locs = append(locs, Location{
			Name:        name,
			Description: cleanText(s.Find(".description").First().Text()),
			IsOnCampus:  !offCampus,
			OpenWindows: ParseHours(cleanText(s.Find(".hours").First().Text())),
		})
	})
	if len(locs) == 0 {
		return nil, fmt.Errorf("no dining locations found at %s", url)
	}
	return NewDataset(locs), nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
