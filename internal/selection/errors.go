package selection

import "errors"

// Validation and transition errors, surfaced to the shopper as blocking or
// transient notices. The submit-validation messages are checked in a fixed
// order: product, make, model, pack, battery colour.
var (
	ErrNoProductSelected     = errors.New("no product selected")
	ErrMakeRequired          = errors.New("please select a helmet make")
	ErrModelRequired         = errors.New("please select a helmet model")
	ErrPackRequired          = errors.New("please select a pack type")
	ErrBatteryColourRequired = errors.New("battery colour required")

	ErrInvalidPack          = errors.New("unknown pack type")
	ErrInvalidBatteryColour = errors.New("unknown battery colour")
	ErrUnknownExtra         = errors.New("unknown extra")
	ErrExtraInsertDisabled  = errors.New("the extra insert option is not available")
	ErrNotConfigurable      = errors.New("battery colour and extras apply to Full Pack selections only")

	// ErrSubmissionInFlight guards the Submitting phase: a second submit or a
	// facet change while a request is on the wire is rejected, never queued.
	ErrSubmissionInFlight = errors.New("submission already in progress")
)
