// Package selection owns the evolving shopper configuration as an explicit
// state machine. Every UI event becomes a transition; the frontend renders the
// resulting Projection and holds no selection state of its own.
package selection

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alimranakash/visor-selection-api/internal/cart"
	"github.com/alimranakash/visor-selection-api/internal/catalog"
	"github.com/alimranakash/visor-selection-api/internal/models"
	"github.com/alimranakash/visor-selection-api/internal/pricing"
)

// Phase is the coarse state of a selection.
type Phase string

const (
	PhaseEmpty       Phase = "empty"
	PhaseMakeChosen  Phase = "make_chosen"
	PhaseModelChosen Phase = "model_chosen"
	PhaseAvailable   Phase = "available"
	PhaseUnavailable Phase = "unavailable"
	PhaseSubmitting  Phase = "submitting"
	PhaseSubmitted   Phase = "submitted"
)

// Submitter sends a finalized selection to the external cart service.
// Implemented by cart.Adapter; tests substitute a fake.
type Submitter interface {
	Submit(ctx context.Context, req cart.Request) (*cart.Response, error)
}

// Machine is the selection state machine for one shopper session. Transitions
// are serialized by the mutex; the only operation that releases it mid-flight
// is Submit's network call, during which the machine sits in PhaseSubmitting
// and rejects every other transition.
//
// The catalog snapshot and settings are captured at construction and never
// change for the life of the session.
type Machine struct {
	mu        sync.Mutex
	phase     Phase
	sel       models.Selection
	quote     *pricing.Quote
	snap      *catalog.Snapshot
	settings  models.Settings
	submitter Submitter
	nonce     string
}

// NewMachine creates an empty selection over the given snapshot and settings.
// The nonce is the single-use token the cart submission carries.
func NewMachine(snap *catalog.Snapshot, settings models.Settings, submitter Submitter, nonce string) *Machine {
	return &Machine{
		phase:     PhaseEmpty,
		sel:       models.Selection{Extras: make(map[string]bool)},
		snap:      snap,
		settings:  settings,
		submitter: submitter,
		nonce:     nonce,
	}
}

// SetNonce replaces the submission token. Called after a successful submission
// consumes the previous one; later submissions in the same session must carry
// the replacement.
func (m *Machine) SetNonce(nonce string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nonce = nonce
}

// ChooseMake sets the make and clears every downstream facet: model, pack,
// battery colour, extras and the resolved SKU.
func (m *Machine) ChooseMake(mk string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}
	mk = catalog.NormalizeMake(mk)
	if mk == "" {
		return ErrMakeRequired
	}
	m.sel = models.Selection{
		Make:   mk,
		Extras: make(map[string]bool),
	}
	m.quote = nil
	m.phase = PhaseMakeChosen
	return nil
}

// ChooseModel sets the model. Requires a make; clears pack and the resolved
// SKU but keeps make, battery colour and extras flags (extras are ignored by
// pricing until a Full Pack SKU resolves again).
func (m *Machine) ChooseModel(model string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}
	if m.sel.Make == "" {
		return ErrMakeRequired
	}
	if model != models.ModelUnknown {
		model = strings.TrimSpace(model)
	}
	if model == "" {
		return ErrModelRequired
	}
	m.sel.Model = model
	m.sel.Pack = ""
	m.sel.Resolved = nil
	m.quote = nil
	m.phase = PhaseModelChosen
	return nil
}

// ChooseModelUnknown records that the shopper's helmet model is not in the
// catalog. Resolution will land on Unavailable for any pack.
func (m *Machine) ChooseModelUnknown() error {
	return m.ChooseModel(models.ModelUnknown)
}

// ChoosePack sets the pack type and triggers resolution. The machine lands in
// PhaseAvailable with a priced SKU, or PhaseUnavailable when no catalog entry
// matches the chosen combination.
func (m *Machine) ChoosePack(pack models.PackType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}
	if m.sel.Make == "" {
		return ErrMakeRequired
	}
	if m.sel.Model == "" {
		return ErrModelRequired
	}
	if !pack.IsValid() {
		return ErrInvalidPack
	}
	m.sel.Pack = pack

	sku, ok := m.snap.Resolve(m.sel.Make, m.sel.Model, pack)
	if !ok {
		m.sel.Resolved = nil
		m.quote = nil
		m.phase = PhaseUnavailable
		return nil
	}
	m.sel.Resolved = sku
	m.reprice()
	m.phase = PhaseAvailable
	return nil
}

// ChooseBatteryColour picks the battery pack colour. Only valid with a
// resolved Full Pack SKU; it never changes resolution or price.
func (m *Machine) ChooseBatteryColour(colour models.BatteryColour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}
	if m.phase != PhaseAvailable || m.sel.Pack != models.PackFullPack {
		return ErrNotConfigurable
	}
	if !colour.IsValid() {
		return ErrInvalidBatteryColour
	}
	m.sel.BatteryColour = colour
	return nil
}

// ToggleExtra switches one extra on or off and reprices. Only valid with a
// resolved Full Pack SKU. The extra-insert option is rejected outright when
// disabled in settings.
func (m *Machine) ToggleExtra(id string, selected bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}
	if m.phase != PhaseAvailable || m.sel.Pack != models.PackFullPack {
		return ErrNotConfigurable
	}
	switch id {
	case models.ExtraBattery:
	case models.ExtraInsert:
		if selected && !m.settings.ExtraInsertEnabled {
			return ErrExtraInsertDisabled
		}
	default:
		return ErrUnknownExtra
	}
	m.sel.Extras[id] = selected
	m.reprice()
	return nil
}

// ClearExtras removes every selected extra and reprices.
func (m *Machine) ClearExtras() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}
	m.sel.Extras = make(map[string]bool)
	m.reprice()
	return nil
}

// Reset returns the machine to Empty, clearing all fields.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseSubmitting {
		return ErrSubmissionInFlight
	}
	m.resetLocked()
	return nil
}

func (m *Machine) resetLocked() {
	m.sel = models.Selection{Extras: make(map[string]bool)}
	m.quote = nil
	m.phase = PhaseEmpty
}

// reprice recomputes the quote for the current resolved SKU, if any.
func (m *Machine) reprice() {
	if m.sel.Resolved == nil {
		m.quote = nil
		return
	}
	q := pricing.Calculate(m.sel.Resolved, m.sel.Extras, m.settings, m.snap)
	m.quote = &q
}

// validateLocked enforces the submit preconditions in their fixed order.
func (m *Machine) validateLocked() error {
	if m.sel.Resolved == nil {
		return ErrNoProductSelected
	}
	if m.sel.Make == "" {
		return ErrMakeRequired
	}
	if m.sel.Model == "" {
		return ErrModelRequired
	}
	if m.sel.Pack == "" {
		return ErrPackRequired
	}
	if m.sel.Pack == models.PackFullPack && m.sel.BatteryColour == "" {
		return ErrBatteryColourRequired
	}
	return nil
}

// Submit validates the selection and sends exactly one add-to-cart request.
// While the request is on the wire the machine is in PhaseSubmitting and
// rejects all other calls. On failure the selection is preserved and the
// machine returns to PhaseAvailable so the shopper can retry; on success it
// resets and lands in PhaseSubmitted. Navigation to the returned cart URL is
// the caller's job.
func (m *Machine) Submit(ctx context.Context) (*cart.Response, error) {
	m.mu.Lock()
	if m.phase == PhaseSubmitting {
		m.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if err := m.validateLocked(); err != nil {
		m.mu.Unlock()
		return nil, err
	}

	sku := m.sel.Resolved
	req := cart.Request{
		ProductID: sku.ID,
		Quantity:  1,
		Make:      m.snap.MakeDisplay(m.sel.Make),
		Model:     m.sel.Model,
		Pack:      m.sel.Pack,
		UnitPrice: m.quote.CartPrice,
		Nonce:     m.nonce,
	}
	if m.sel.Pack == models.PackFullPack {
		req.BatteryColour = m.sel.BatteryColour
		req.Extras = m.sel.SelectedExtras()
	}
	m.phase = PhaseSubmitting
	m.mu.Unlock()

	resp, err := m.submitter.Submit(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.phase = PhaseAvailable
		return nil, fmt.Errorf("add to cart failed: %w", err)
	}
	m.resetLocked()
	m.phase = PhaseSubmitted
	return resp, nil
}

// Quote returns a copy of the current quote, or false when no SKU is priced.
func (m *Machine) Quote() (pricing.Quote, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quote == nil {
		return pricing.Quote{}, false
	}
	return *m.quote, true
}

// Projection computes the UI view of the current state.
func (m *Machine) Projection() models.Projection {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := models.Projection{
		Phase:         string(m.phase),
		Make:          m.sel.Make,
		Model:         m.sel.Model,
		Pack:          m.sel.Pack,
		BatteryColour: m.sel.BatteryColour,
		Extras:        m.sel.SelectedExtras(),
		ModelEnabled:  m.sel.Make != "",
		PackEnabled:   m.sel.Make != "" && m.sel.Model != "",

		ExtraInsertAvailable: m.settings.ExtraInsertEnabled,
	}
	if m.sel.Make != "" {
		p.ModelOptions = m.snap.Models(m.sel.Make)
	}

	fullPackResolved := m.sel.Resolved != nil && m.sel.Pack == models.PackFullPack
	p.BatterySectionVisible = fullPackResolved
	p.ExtrasSectionVisible = fullPackResolved

	switch m.phase {
	case PhaseAvailable:
		price := m.quote.DisplayPrice
		p.DisplayPrice = &price
		p.PriceText = fmt.Sprintf("YOUR PRICE £%.2f", price)
		p.SubmitEnabled = true
		p.SubmitLabel = "ADD TO CART"
	case PhaseUnavailable:
		p.PriceText = "Product Unavailable"
		p.SubmitLabel = "UNAVAILABLE"
	case PhaseSubmitting:
		if m.quote != nil {
			price := m.quote.DisplayPrice
			p.DisplayPrice = &price
			p.PriceText = fmt.Sprintf("YOUR PRICE £%.2f", price)
		}
		p.SubmitLabel = "ADDING TO CART..."
	case PhaseSubmitted:
		p.PriceText = "YOUR PRICE £XXX.XX"
		p.SubmitLabel = "ADDED TO CART!"
	default:
		p.PriceText = "YOUR PRICE £XXX.XX"
		p.SubmitLabel = "SELECT OPTIONS"
	}
	return p
}
