// Package enrich prefills lead drafts from a business's public website.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Hints are the details scraped from a website, used to prefill a draft.
type Hints struct {
	BusinessName string
	Description  string
	Email        string
	Phone        string
	Domain       string
}

var phoneRe = regexp.MustCompile(`\+?[\d][\d\s().-]{8,}[\d]`)

// Inspect fetches the page at websiteURL and extracts whatever lead details
// it advertises: title, meta description, mailto/tel links.
func Inspect(ctx context.Context, websiteURL string) (Hints, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, websiteURL, nil)
	if err != nil {
		return Hints{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0")
	req.Header.Set("Accept-Language", "en")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return Hints{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Hints{}, fmt.Errorf("fetching %s failed with status %d", websiteURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Hints{}, err
	}

	hints := FromDocument(doc)
	hints.Domain, _ = RegisteredDomain(websiteURL)
	return hints, nil
}

// FromDocument extracts hints from an already parsed page.
func FromDocument(doc *goquery.Document) Hints {
	var h Hints

	h.BusinessName = cleanLine(doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		h.Description = cleanLine(desc)
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		switch {
		case strings.HasPrefix(href, "mailto:") && h.Email == "":
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			h.Email = strings.TrimSpace(addr)
		case strings.HasPrefix(href, "tel:") && h.Phone == "":
			h.Phone = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		}
		return h.Email == "" || h.Phone == ""
	})

	if h.Phone == "" {
		if m := phoneRe.FindString(doc.Find("body").Text()); m != "" {
			h.Phone = cleanLine(m)
		}
	}
	return h
}

// RegisteredDomain returns the registrable domain of a website URL, e.g.
// "shop.example.co.uk" -> "example.co.uk".
func RegisteredDomain(websiteURL string) (string, error) {
	u, err := url.Parse(websiteURL)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	if host == "" {
		host = websiteURL
	}
	return publicsuffix.Domain(host)
}

func cleanLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.Join(strings.Fields(s), " ")
}
