package handlers

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strconv"

	"github.com/alimranakash/visor-selection-api/internal/auth"
	"github.com/gin-gonic/gin"
)

//
// --- Admin Handlers (Settings & Cache) ---
//

// maxExtraPrice matches the cap the old settings form enforced.
const maxExtraPrice = 9999.99

type AdminLoginInput struct {
	Password string `json:"password" binding:"required"`
}

// AdminLogin is the handler for POST /v1/login
// The admin password comes from the ADMIN_PASSWORD environment variable; when
// it is unset the admin surface is disabled entirely.
func (h *Handlers) AdminLogin(c *gin.Context) {
	var input AdminLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	expected := os.Getenv("ADMIN_PASSWORD")
	if expected == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Admin access is not configured"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(input.Password), []byte(expected)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken("admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetSettings is the handler for GET /v1/admin/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.loadSettings(c))
}

// UpdateSettingsInput updates only the fields it carries.
type UpdateSettingsInput struct {
	ExtraBatteryPrice  *float64 `json:"extraBatteryPrice" binding:"omitempty,gte=0"`
	ExtraInsertPrice   *float64 `json:"extraInsertPrice" binding:"omitempty,gte=0"`
	ExtraInsertEnabled *bool    `json:"extraInsertEnabled"`
}

// UpdateSettings is the handler for PATCH /v1/admin/settings
// Prices are clamped to 0..9999.99 and stored with 2 fraction digits, the way
// the old settings form sanitized them. New values apply to new sessions only.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.ExtraBatteryPrice != nil {
		v := clampPrice(*input.ExtraBatteryPrice)
		if err := h.saveSetting(c, "extra_battery_price", strconv.FormatFloat(v, 'f', 2, 64)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}
	if input.ExtraInsertPrice != nil {
		v := clampPrice(*input.ExtraInsertPrice)
		if err := h.saveSetting(c, "extra_insert_price", strconv.FormatFloat(v, 'f', 2, 64)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}
	if input.ExtraInsertEnabled != nil {
		value := "0"
		if *input.ExtraInsertEnabled {
			value = "1"
		}
		if err := h.saveSetting(c, "extra_insert_enabled", value); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}

	c.JSON(http.StatusOK, h.loadSettings(c))
}

func clampPrice(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxExtraPrice {
		return maxExtraPrice
	}
	return v
}

// GetCacheStatus is the handler for GET /v1/admin/catalog/cache
func (h *Handlers) GetCacheStatus(c *gin.Context) {
	active, count, loadedAt := h.Catalog.Status()
	status := "empty"
	resp := gin.H{"productCount": count}
	if active {
		status = "active"
		resp["loadedAt"] = loadedAt
	}
	resp["status"] = status
	c.JSON(http.StatusOK, resp)
}

// ClearCache is the handler for DELETE /v1/admin/catalog/cache
// Forces a reload of the product snapshot, for use after editing products.
// Existing sessions keep the snapshot they started with.
func (h *Handlers) ClearCache(c *gin.Context) {
	h.Catalog.Invalidate()
	snap, err := h.Catalog.Refresh(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload catalog: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Product cache cleared successfully",
		"productCount": snap.Len(),
	})
}
