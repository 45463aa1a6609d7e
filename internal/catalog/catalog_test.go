package catalog

import (
	"testing"

	"github.com/alimranakash/visor-selection-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []models.VisorProduct {
	return []models.VisorProduct{
		{ID: 1, Make: "Shoei", Model: "X-15", Pack: models.PackFullPack, Price: 499.00},
		{ID: 2, Make: "Shoei", Model: "X-15", Pack: models.PackInsertOnly, Price: 194.99},
		{ID: 3, Make: " SHOEI ", Model: "NXR2", Pack: models.PackFullPack, Price: 459.00},
		{ID: 4, Make: "Arai", Model: "Quantic", Pack: models.PackFullPack, Price: 479.00},
		{ID: 5, Make: "Klim", Model: "Krios Pro", Pack: models.PackInsertOnly, Price: 189.99},
	}
}

func TestNewSnapshotSkipsMalformedRows(t *testing.T) {
	rows := append(testRows(),
		models.VisorProduct{ID: 6, Make: "", Model: "F-17", Pack: models.PackFullPack, Price: 10},
		models.VisorProduct{ID: 7, Make: "AGV", Model: "  ", Pack: models.PackFullPack, Price: 10},
		models.VisorProduct{ID: 8, Make: "AGV", Model: "Pista", Pack: "", Price: 10},
	)

	snap := NewSnapshot(rows, nil)

	assert.Equal(t, 5, snap.Len())
	assert.NotContains(t, snap.Makes(), "agv")
}

func TestMakesFirstSeenOrderDeduplicated(t *testing.T) {
	snap := NewSnapshot(testRows(), nil)

	assert.Equal(t, []string{"shoei", "arai", "klim"}, snap.Makes())
}

func TestMakeDisplayKeepsOriginalCasing(t *testing.T) {
	snap := NewSnapshot(testRows(), nil)

	assert.Equal(t, "Shoei", snap.MakeDisplay("shoei"))
	assert.Equal(t, "Shoei", snap.MakeDisplay("  SHOEI "))
	assert.Equal(t, "nolan", snap.MakeDisplay("nolan")) // unknown falls through
}

func TestModels(t *testing.T) {
	snap := NewSnapshot(testRows(), nil)

	assert.Equal(t, []string{"X-15", "NXR2"}, snap.Models("shoei"))
	assert.Equal(t, []string{"X-15", "NXR2"}, snap.Models(" SHOEI "))
	assert.Equal(t, []string{"Quantic"}, snap.Models("Arai"))
	assert.Empty(t, snap.Models("nolan"))
}

func TestResolve(t *testing.T) {
	snap := NewSnapshot(testRows(), nil)

	sku, ok := snap.Resolve("SHOEI", "X-15", models.PackFullPack)
	require.True(t, ok)
	assert.Equal(t, int64(1), sku.ID)

	// Model comparison is exact, not case-normalized.
	_, ok = snap.Resolve("shoei", "x-15", models.PackFullPack)
	assert.False(t, ok)

	// Pack must match exactly too.
	_, ok = snap.Resolve("arai", "Quantic", models.PackInsertOnly)
	assert.False(t, ok)
}

func TestResolveUnknownModelSentinelNeverMatches(t *testing.T) {
	rows := append(testRows(),
		// Even a catalog row carrying the literal sentinel must not resolve.
		models.VisorProduct{ID: 9, Make: "Shoei", Model: models.ModelUnknown, Pack: models.PackFullPack, Price: 1},
	)
	snap := NewSnapshot(rows, nil)

	_, ok := snap.Resolve("shoei", models.ModelUnknown, models.PackFullPack)
	assert.False(t, ok)
}

func TestResolveFirstMatchWinsOnDuplicates(t *testing.T) {
	rows := append(testRows(),
		models.VisorProduct{ID: 10, Make: "Shoei", Model: "X-15", Pack: models.PackFullPack, Price: 999.00},
	)
	snap := NewSnapshot(rows, nil)

	sku, ok := snap.Resolve("shoei", "X-15", models.PackFullPack)
	require.True(t, ok)
	assert.Equal(t, int64(1), sku.ID)
	assert.Equal(t, 499.00, sku.Price)
}

func TestInsertOnlySibling(t *testing.T) {
	snap := NewSnapshot(testRows(), nil)

	sibling, ok := snap.InsertOnlySibling("Shoei", "X-15")
	require.True(t, ok)
	assert.Equal(t, int64(2), sibling.ID)
	assert.Equal(t, 194.99, sibling.Price)

	_, ok = snap.InsertOnlySibling("Arai", "Quantic")
	assert.False(t, ok)
}

func TestLogoLookup(t *testing.T) {
	logos := map[string]string{"shoei": "https://cdn.example.com/logo-shoei.png"}
	snap := NewSnapshot(testRows(), logos)

	url, ok := snap.Logo(" SHOEI ")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/logo-shoei.png", url)

	_, ok = snap.Logo("Arai")
	assert.False(t, ok)
}

func TestResolveIsPure(t *testing.T) {
	snap := NewSnapshot(testRows(), nil)

	first, ok1 := snap.Resolve("shoei", "X-15", models.PackFullPack)
	second, ok2 := snap.Resolve("shoei", "X-15", models.PackFullPack)

	require.True(t, ok1)
	require.True(t, ok2)
	assert.Same(t, first, second)
}
