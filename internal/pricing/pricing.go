// Package pricing computes the quoted price for a resolved visor selection.
//
// The quote has one authoritative figure: DisplayPrice, the amount shown to the
// shopper while configuring, and CartPrice, the unit price submitted with the
// cart line. The two are computed from the same formula so the persisted line
// always equals what was quoted on screen.
package pricing

import (
	"math"

	"github.com/alimranakash/visor-selection-api/internal/catalog"
	"github.com/alimranakash/visor-selection-api/internal/models"
)

// Quote is the result of pricing one resolved SKU with its active extras.
type Quote struct {
	Base             float64 `json:"base"`
	BatterySurcharge float64 `json:"batterySurcharge"`
	InsertSurcharge  float64 `json:"insertSurcharge"`
	// InsertFromCatalog is true when the insert surcharge came from the
	// matching Insert Only SKU rather than the settings fallback.
	InsertFromCatalog bool    `json:"insertFromCatalog"`
	DisplayPrice      float64 `json:"displayPrice"`
	CartPrice         float64 `json:"cartPrice"`
}

// Round2 rounds to 2 fraction digits, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate prices a resolved SKU.
//
// Insert Only packs are the base price, full stop: battery colour and extras
// do not apply, and any extras still flagged from an earlier Full Pack
// selection are ignored.
//
// Full Pack adds the battery surcharge from settings when extra-battery is
// selected. When extra-insert is selected (and enabled in settings), the
// surcharge is the price of the Insert Only SKU for the same (make, model),
// falling back to the settings price when no such SKU exists.
func Calculate(sku *models.VisorProduct, extras map[string]bool, settings models.Settings, snap *catalog.Snapshot) Quote {
	q := Quote{Base: sku.Price}

	if sku.Pack != models.PackFullPack {
		q.DisplayPrice = Round2(q.Base)
		q.CartPrice = q.DisplayPrice
		return q
	}

	if extras[models.ExtraBattery] {
		q.BatterySurcharge = settings.ExtraBatteryPrice
	}

	if extras[models.ExtraInsert] && settings.ExtraInsertEnabled {
		if insert, ok := snap.InsertOnlySibling(sku.Make, sku.Model); ok {
			q.InsertSurcharge = insert.Price
			q.InsertFromCatalog = true
		} else {
			q.InsertSurcharge = settings.ExtraInsertPrice
		}
	}

	q.DisplayPrice = Round2(q.Base + q.BatterySurcharge + q.InsertSurcharge)
	q.CartPrice = q.DisplayPrice
	return q
}
