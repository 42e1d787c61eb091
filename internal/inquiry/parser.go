// Package inquiry extracts lead fields from real-estate portal inquiry HTML,
// the notification markup portals like Zillow or Realtor send per inquiry.
// Markup varies per portal, so extraction is tolerant: structured hints
// (mailto:/tel: links, labeled rows) are tried in order and whatever is found
// is kept.
package inquiry

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Parse extracts whatever lead fields the inquiry markup carries. Fields that
// cannot be found stay zero; the caller decides whether the result is complete
// enough to submit.
func Parse(html []byte) (followupboss.Lead, error) {
	if len(html) > maxHTMLBodyBytes {
		html = html[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return followupboss.Lead{}, fmt.Errorf("parse inquiry html: %w", err)
	}

	var lead followupboss.Lead

	if href, ok := doc.Find(`a[href^="mailto:"]`).First().Attr("href"); ok {
		lead.Email = cleanLinkTarget(href, "mailto:")
	}
	if href, ok := doc.Find(`a[href^="tel:"]`).First().Attr("href"); ok {
		lead.Phone = cleanLinkTarget(href, "tel:")
	}

	fields := labeledFields(doc)
	applyFields(&lead, fields)

	if lead.Message == "" {
		if msg := strings.TrimSpace(doc.Find("blockquote").First().Text()); msg != "" {
			lead.Message = collapseWhitespace(msg)
		}
	}

	return lead, nil
}

// labeledFields collects label/value pairs from table rows and definition
// lists, the two structures portal templates actually use.
func labeledFields(doc *goquery.Document) map[string]string {
	fields := make(map[string]string)

	put := func(label, value string) {
		label = normalizeLabel(label)
		value = collapseWhitespace(value)
		if label == "" || value == "" {
			return
		}
		if _, ok := fields[label]; !ok {
			fields[label] = value
		}
	}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td,th")
		if cells.Length() < 2 {
			return
		}
		put(cells.Eq(0).Text(), cells.Eq(1).Text())
	})

	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		put(dt.Text(), dd.Text())
	})

	return fields
}

func applyFields(lead *followupboss.Lead, fields map[string]string) {
	for label, value := range fields {
		switch label {
		case "first name":
			lead.FirstName = value
		case "last name":
			lead.LastName = value
		case "name", "full name", "from", "contact":
			if lead.FirstName == "" && lead.LastName == "" {
				lead.FirstName, lead.LastName = splitName(value)
			}
		case "email", "email address":
			if lead.Email == "" {
				lead.Email = value
			}
		case "phone", "phone number", "mobile":
			if lead.Phone == "" {
				lead.Phone = value
			}
		case "message", "comments", "inquiry", "notes":
			lead.Message = value
		case "source", "portal":
			lead.Source = value
		case "price", "price range", "budget":
			lead.PriceMin, lead.PriceMax = parsePriceRange(value)
		}
	}
}

// splitName splits a display name on the last space.
func splitName(full string) (first, last string) {
	full = collapseWhitespace(full)
	idx := strings.LastIndex(full, " ")
	if idx < 0 {
		return full, ""
	}
	return full[:idx], full[idx+1:]
}

// parsePriceRange reads up to two amounts out of strings like
// "$300,000 - $400,000" or "under $400k".
func parsePriceRange(s string) (min, max int) {
	amounts := extractAmounts(s)
	switch len(amounts) {
	case 0:
		return 0, 0
	case 1:
		if containsAny(strings.ToLower(s), "under", "below", "max", "up to") {
			return 0, amounts[0]
		}
		return amounts[0], 0
	default:
		return amounts[0], amounts[1]
	}
}

func extractAmounts(s string) []int {
	var out []int
	var cur strings.Builder
	flush := func(next byte) {
		if cur.Len() == 0 {
			return
		}
		n, err := strconv.Atoi(cur.String())
		cur.Reset()
		if err != nil || n <= 0 {
			return
		}
		if next == 'k' || next == 'K' {
			n *= 1000
		}
		out = append(out, n)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			cur.WriteByte(c)
		case c == ',' && cur.Len() > 0:
			// thousands separator inside an amount
		default:
			flush(c)
		}
	}
	flush(0)
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cleanLinkTarget(href, scheme string) string {
	v := strings.TrimPrefix(href, scheme)
	if idx := strings.IndexByte(v, '?'); idx >= 0 {
		v = v[:idx]
	}
	return strings.TrimSpace(v)
}

func normalizeLabel(s string) string {
	s = strings.ToLower(collapseWhitespace(s))
	return strings.TrimRight(s, ":")
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
