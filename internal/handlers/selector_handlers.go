package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/cart"
	"github.com/alimranakash/visor-selection-api/internal/models"
	"github.com/alimranakash/visor-selection-api/internal/selection"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Selector Handlers (Public) ---
//

// MakeEntry is one tile in the make grid: the normalized value the API
// accepts, the display label, and the logo URL when one is configured.
type MakeEntry struct {
	Make  string `json:"make"`
	Label string `json:"label"`
	Logo  string `json:"logo,omitempty"`
}

// GetCatalog is the handler for GET /v1/selector/catalog
func (h *Handlers) GetCatalog(c *gin.Context) {
	snap, err := h.Catalog.Snapshot(c)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog is unavailable, please try again shortly"})
		return
	}

	makes := snap.Makes()
	entries := make([]MakeEntry, 0, len(makes))
	for _, m := range makes {
		entry := MakeEntry{Make: m, Label: snap.MakeDisplay(m)}
		if logo, ok := snap.Logo(m); ok {
			entry.Logo = logo
		}
		entries = append(entries, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"makes":        entries,
		"productCount": snap.Len(),
	})
}

// CreateSession is the handler for POST /v1/selector/sessions
// It captures the current catalog snapshot and settings for the session's
// lifetime and issues the single-use submission nonce.
func (h *Handlers) CreateSession(c *gin.Context) {
	snap, err := h.Catalog.Snapshot(c)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Catalog is unavailable, please try again shortly"})
		return
	}

	settings := h.loadSettings(c)
	sess := &Session{
		ID:        uuid.NewString(),
		Nonce:     newNonce(),
		CreatedAt: time.Now(),
	}
	sess.Machine = selection.NewMachine(snap, settings, h.Submitter, sess.Nonce)
	h.Sessions.Put(sess)

	c.JSON(http.StatusCreated, gin.H{
		"sessionId":  sess.ID,
		"nonce":      sess.Nonce,
		"projection": sess.Machine.Projection(),
	})
}

// session looks up the session from the :id path param, replying 404 itself
// when it is missing or expired.
func (h *Handlers) session(c *gin.Context) (*Session, bool) {
	sess, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found or expired"})
		return nil, false
	}
	return sess, true
}

// projectionResponse is the common success payload for transition endpoints.
func projectionResponse(c *gin.Context, sess *Session) {
	c.JSON(http.StatusOK, gin.H{
		"sessionId":  sess.ID,
		"projection": sess.Machine.Projection(),
	})
}

// transitionError maps selection errors to HTTP statuses. A submission in
// flight is a conflict the UI shows as a transient notice; everything else is
// a blocking validation message.
func transitionError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, selection.ErrSubmissionInFlight) {
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// GetSession is the handler for GET /v1/selector/sessions/:id
func (h *Handlers) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	projectionResponse(c, sess)
}

type ChooseMakeInput struct {
	Make string `json:"make" binding:"required"`
}

// ChooseMake is the handler for POST /v1/selector/sessions/:id/make
func (h *Handlers) ChooseMake(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var input ChooseMakeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := sess.Machine.ChooseMake(input.Make); err != nil {
		transitionError(c, err)
		return
	}
	projectionResponse(c, sess)
}

type ChooseModelInput struct {
	Model string `json:"model" binding:"required"`
}

// ChooseModel is the handler for POST /v1/selector/sessions/:id/model
// Sending the literal "OTHER / UNKNOWN" takes the unknown-model path.
func (h *Handlers) ChooseModel(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var input ChooseModelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var err error
	if input.Model == models.ModelUnknown {
		err = sess.Machine.ChooseModelUnknown()
	} else {
		err = sess.Machine.ChooseModel(input.Model)
	}
	if err != nil {
		transitionError(c, err)
		return
	}
	projectionResponse(c, sess)
}

type ChoosePackInput struct {
	Pack models.PackType `json:"pack" binding:"required"`
}

// ChoosePack is the handler for POST /v1/selector/sessions/:id/pack
func (h *Handlers) ChoosePack(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var input ChoosePackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := sess.Machine.ChoosePack(input.Pack); err != nil {
		transitionError(c, err)
		return
	}
	projectionResponse(c, sess)
}

type ChooseBatteryColourInput struct {
	Colour models.BatteryColour `json:"colour" binding:"required"`
}

// ChooseBatteryColour is the handler for POST /v1/selector/sessions/:id/battery-colour
func (h *Handlers) ChooseBatteryColour(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var input ChooseBatteryColourInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := sess.Machine.ChooseBatteryColour(input.Colour); err != nil {
		transitionError(c, err)
		return
	}
	projectionResponse(c, sess)
}

type ToggleExtraInput struct {
	Extra    string `json:"extra" binding:"required"`
	Selected *bool  `json:"selected" binding:"required"`
}

// ToggleExtra is the handler for POST /v1/selector/sessions/:id/extras
func (h *Handlers) ToggleExtra(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var input ToggleExtraInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if err := sess.Machine.ToggleExtra(input.Extra, *input.Selected); err != nil {
		transitionError(c, err)
		return
	}
	projectionResponse(c, sess)
}

// ClearExtras is the handler for DELETE /v1/selector/sessions/:id/extras
func (h *Handlers) ClearExtras(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Machine.ClearExtras(); err != nil {
		transitionError(c, err)
		return
	}
	projectionResponse(c, sess)
}

// ResetSession is the handler for POST /v1/selector/sessions/:id/reset
func (h *Handlers) ResetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if err := sess.Machine.Reset(); err != nil {
		transitionError(c, err)
		return
	}
	projectionResponse(c, sess)
}

type SubmitInput struct {
	Nonce string `json:"nonce" binding:"required"`
}

// Submit is the handler for POST /v1/selector/sessions/:id/submit
// Exactly one cart request is sent per accepted call. On success the session
// resets and a fresh nonce is issued for the next configuration; the frontend
// is responsible for navigating to the returned cart URL.
func (h *Handlers) Submit(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	var input SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if input.Nonce != sess.Nonce {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid submission token"})
		return
	}

	resp, err := sess.Machine.Submit(c)
	if err != nil {
		switch {
		case errors.Is(err, selection.ErrSubmissionInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, cart.ErrRejected):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "projection": sess.Machine.Projection()})
		case errors.Is(err, selection.ErrNoProductSelected),
			errors.Is(err, selection.ErrMakeRequired),
			errors.Is(err, selection.ErrModelRequired),
			errors.Is(err, selection.ErrPackRequired),
			errors.Is(err, selection.ErrBatteryColourRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Transport failure: selection preserved for a user-driven retry.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "projection": sess.Machine.Projection()})
		}
		return
	}

	// The nonce is single use; rotate it for the shopper's next configuration.
	// The machine must carry the replacement or its next submission would
	// repeat the consumed token.
	sess.Nonce = newNonce()
	sess.Machine.SetNonce(sess.Nonce)

	c.JSON(http.StatusOK, gin.H{
		"sessionId":     sess.ID,
		"nonce":         sess.Nonce,
		"message":       resp.Message,
		"cartUrl":       resp.CartURL,
		"cartItemCount": resp.CartItemCount,
		"projection":    sess.Machine.Projection(),
	})
}
