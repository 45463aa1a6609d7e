package models

// PackType is the top-level product variant axis. The source data stores it as a
// free-form string, but only these two values mean anything to the pricing logic.
type PackType string

const (
	PackFullPack   PackType = "Full Pack"
	PackInsertOnly PackType = "Insert Only"
)

// IsValid reports whether the pack type is one of the two known values.
func (p PackType) IsValid() bool {
	return p == PackFullPack || p == PackInsertOnly
}

// BatteryColour is only meaningful for Full Pack selections.
type BatteryColour string

const (
	BatteryBlack BatteryColour = "Black"
	BatteryGrey  BatteryColour = "Grey"
)

// IsValid reports whether the colour is one of the offered options.
func (b BatteryColour) IsValid() bool {
	return b == BatteryBlack || b == BatteryGrey
}

// Extra identifiers, as stored against cart lines.
const (
	ExtraBattery = "extra-battery"
	ExtraInsert  = "extra-insert"
)

// ModelUnknown is the sentinel a shopper picks when their helmet model is not in
// the catalog. Resolution deliberately fails for it; no SKU carries this literal.
const ModelUnknown = "OTHER / UNKNOWN"

// VisorProduct is one purchasable variant from the 'visor_products' table.
// Make is compared lower-cased and trimmed but kept as stored for display.
// Model is matched exactly.
type VisorProduct struct {
	ID    int64    `json:"id" db:"id"`
	Make  string   `json:"make" db:"make"`
	Model string   `json:"model" db:"model"`
	Pack  PackType `json:"pack" db:"pack"`
	Price float64  `json:"price" db:"price"`
}
