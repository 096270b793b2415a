// Package marketplace maps raw marketplace product URLs to canonical,
// deduplication-safe product references.
package marketplace

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Marketplace identifies a supported storefront.
type Marketplace string

// Supported marketplaces.
const (
	Amazon Marketplace = "amazon"
	Ebay   Marketplace = "ebay"
)

// String returns the display name used in user-facing messages.
func (m Marketplace) String() string {
	switch m {
	case Amazon:
		return "Amazon"
	case Ebay:
		return "Ebay"
	default:
		return string(m)
	}
}

// ProductRef is the canonical identity of one marketplace listing.
// CanonicalURL is the key the tracking service deduplicates on.
type ProductRef struct {
	Marketplace  Marketplace `json:"marketplace"`
	ExternalID   string      `json:"external_id,omitempty"`
	CanonicalURL string      `json:"canonical_url"`
}

// Amazon identifiers are tried in this order; the first match wins.
var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`/gp/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})`),
}

var ebayItemPattern = regexp.MustCompile(`/itm/(\d+)`)

const ebayCanonicalHost = "ebay.com"

// Normalize parses raw and returns its canonical product reference.
//
// Amazon URLs without an extractable ASIN fail with ErrIdentifierNotFound.
// eBay URLs without an item id do not fail: the raw URL is passed through
// unchanged as the canonical form and ExternalID is left empty.
func Normalize(raw string) (ProductRef, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return ProductRef{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Hostname() == "" {
		return ProductRef{}, fmt.Errorf("%w: %q is not an absolute url", ErrInvalidURL, raw)
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "amazon"):
		return normalizeAmazon(u, host)
	case strings.Contains(host, "ebay"):
		return normalizeEbay(u, raw), nil
	default:
		return ProductRef{}, fmt.Errorf("%w: %s", ErrUnsupportedMarketplace, host)
	}
}

func normalizeAmazon(u *url.URL, host string) (ProductRef, error) {
	path := u.EscapedPath()
	for _, p := range asinPatterns {
		if m := p.FindStringSubmatch(path); m != nil {
			return ProductRef{
				Marketplace:  Amazon,
				ExternalID:   m[1],
				CanonicalURL: "https://" + host + "/dp/" + m[1],
			}, nil
		}
	}
	return ProductRef{}, fmt.Errorf("%w: no ASIN in %s", ErrIdentifierNotFound, u.EscapedPath())
}

func normalizeEbay(u *url.URL, raw string) ProductRef {
	if m := ebayItemPattern.FindStringSubmatch(u.EscapedPath()); m != nil {
		return ProductRef{
			Marketplace:  Ebay,
			ExternalID:   m[1],
			CanonicalURL: "https://" + ebayCanonicalHost + "/itm/" + m[1],
		}
	}
	return ProductRef{Marketplace: Ebay, CanonicalURL: raw}
}
