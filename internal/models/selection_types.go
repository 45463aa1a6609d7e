package models

// Selection is the evolving shopper configuration owned by the state machine.
// Resolved is derived from (Make, Model, Pack) and is never set directly.
type Selection struct {
	Make          string          `json:"make"`
	Model         string          `json:"model"`
	Pack          PackType        `json:"pack"`
	BatteryColour BatteryColour   `json:"batteryColour"`
	Extras        map[string]bool `json:"extras"`
	Resolved      *VisorProduct   `json:"resolved,omitempty"`
}

// SelectedExtras returns the active extra identifiers in a stable order.
func (s *Selection) SelectedExtras() []string {
	var out []string
	if s.Extras[ExtraBattery] {
		out = append(out, ExtraBattery)
	}
	if s.Extras[ExtraInsert] {
		out = append(out, ExtraInsert)
	}
	return out
}

// Settings holds the tunable extras pricing, sourced from the admin settings
// store. Immutable within one selector session.
type Settings struct {
	ExtraBatteryPrice  float64 `json:"extraBatteryPrice"`
	ExtraInsertPrice   float64 `json:"extraInsertPrice"`
	ExtraInsertEnabled bool    `json:"extraInsertEnabled"`
}

// DefaultSettings mirrors the prices the store launched with. Used whenever the
// settings rows are missing or unreadable.
func DefaultSettings() Settings {
	return Settings{
		ExtraBatteryPrice:  134.99,
		ExtraInsertPrice:   194.99,
		ExtraInsertEnabled: true,
	}
}

// Projection is the UI-facing view of a selection: which controls are live,
// which sections are visible, and what the price/submit widgets should show.
// The frontend renders this verbatim and owns no selection logic of its own.
type Projection struct {
	Phase string `json:"phase"`

	Make          string        `json:"make"`
	Model         string        `json:"model"`
	Pack          PackType      `json:"pack"`
	BatteryColour BatteryColour `json:"batteryColour"`
	Extras        []string      `json:"extras"`

	ModelOptions []string `json:"modelOptions"`
	ModelEnabled bool     `json:"modelEnabled"`
	PackEnabled  bool     `json:"packEnabled"`

	BatterySectionVisible bool `json:"batterySectionVisible"`
	ExtrasSectionVisible  bool `json:"extrasSectionVisible"`
	ExtraInsertAvailable  bool `json:"extraInsertAvailable"`

	DisplayPrice *float64 `json:"displayPrice,omitempty"`
	PriceText    string   `json:"priceText"`

	SubmitEnabled bool   `json:"submitEnabled"`
	SubmitLabel   string `json:"submitLabel"`
}
