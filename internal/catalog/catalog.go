package catalog

import (
	"strings"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/models"
	"github.com/gosimple/slug"
)

// NormalizeMake is the matching form of a make: lower-cased and trimmed.
// Display labels keep the casing the catalog was loaded with.
func NormalizeMake(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Snapshot is the immutable in-memory catalog for one session: an ordered list
// of products plus a make -> logo URL lookup. It is never mutated after
// construction; a refresh builds a new Snapshot and swaps the pointer.
type Snapshot struct {
	products []models.VisorProduct
	logos    map[string]string
	loadedAt time.Time
}

// NewSnapshot builds a snapshot from raw product rows. Rows missing a make,
// model or pack are excluded entirely (skip-and-continue) rather than failing
// the load. Source order is preserved: on duplicate (make, model, pack)
// triples the first row wins at resolution time.
func NewSnapshot(rows []models.VisorProduct, logos map[string]string) *Snapshot {
	products := make([]models.VisorProduct, 0, len(rows))
	for _, p := range rows {
		if strings.TrimSpace(p.Make) == "" || strings.TrimSpace(p.Model) == "" || strings.TrimSpace(string(p.Pack)) == "" {
			continue
		}
		p.Model = strings.TrimSpace(p.Model)
		p.Pack = models.PackType(strings.TrimSpace(string(p.Pack)))
		products = append(products, p)
	}
	if logos == nil {
		logos = map[string]string{}
	}
	return &Snapshot{
		products: products,
		logos:    logos,
		loadedAt: time.Now(),
	}
}

// Products returns the underlying product list. Callers must not modify it.
func (s *Snapshot) Products() []models.VisorProduct {
	return s.products
}

// Len returns the number of usable products in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.products)
}

// LoadedAt returns when this snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Makes returns the distinct normalized makes present in the catalog, in
// first-seen order.
func (s *Snapshot) Makes() []string {
	seen := make(map[string]bool)
	var makes []string
	for _, p := range s.products {
		m := NormalizeMake(p.Make)
		if !seen[m] {
			seen[m] = true
			makes = append(makes, m)
		}
	}
	return makes
}

// MakeDisplay returns the display label for a make: the casing of the first
// catalog row carrying it. Falls back to the input when the make is unknown.
func (s *Snapshot) MakeDisplay(mk string) string {
	m := NormalizeMake(mk)
	for _, p := range s.products {
		if NormalizeMake(p.Make) == m {
			return strings.TrimSpace(p.Make)
		}
	}
	return mk
}

// Logo returns the logo asset URL for a make, if one is configured. Absent
// entries fall back to a text label on the frontend.
func (s *Snapshot) Logo(mk string) (string, bool) {
	url, ok := s.logos[slug.Make(NormalizeMake(mk))]
	return url, ok
}

// Models returns the distinct models for a make, in first-seen order.
// An unknown make yields an empty list, not an error.
func (s *Snapshot) Models(mk string) []string {
	m := NormalizeMake(mk)
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.products {
		if NormalizeMake(p.Make) != m {
			continue
		}
		if !seen[p.Model] {
			seen[p.Model] = true
			out = append(out, p.Model)
		}
	}
	return out
}

// Resolve maps a complete facet selection to at most one product: normalized
// make equality, exact model equality, exact pack equality, first match wins.
// The ModelUnknown sentinel never matches; that is the modeled "no SKU" path
// for helmets the catalog does not cover.
func (s *Snapshot) Resolve(mk, model string, pack models.PackType) (*models.VisorProduct, bool) {
	if model == models.ModelUnknown {
		return nil, false
	}
	m := NormalizeMake(mk)
	for i := range s.products {
		p := &s.products[i]
		if NormalizeMake(p.Make) == m && p.Model == model && p.Pack == pack {
			return p, true
		}
	}
	return nil, false
}

// InsertOnlySibling finds the Insert Only variant for the same (make, model).
// The pricing calculator uses its price as the extra-insert surcharge when the
// shopper adds an insert to a Full Pack.
func (s *Snapshot) InsertOnlySibling(mk, model string) (*models.VisorProduct, bool) {
	return s.Resolve(mk, model, models.PackInsertOnly)
}
