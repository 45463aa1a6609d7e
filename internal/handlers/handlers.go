package handlers

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/catalog"
	"github.com/alimranakash/visor-selection-api/internal/models"
	"github.com/alimranakash/visor-selection-api/internal/selection"
)

// CatalogStore supplies catalog snapshots and cache management.
// Satisfied by *catalog.Store; tests substitute a static provider.
type CatalogStore interface {
	Snapshot(ctx context.Context) (*catalog.Snapshot, error)
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
	Invalidate()
	Status() (active bool, count int, loadedAt time.Time)
}

// Handlers holds all dependencies for the HTTP handlers.
type Handlers struct {
	DB        *sql.DB             // settings storage
	Catalog   CatalogStore        // cached product snapshots
	Submitter selection.Submitter // external cart service
	Sessions  *SessionStore       // in-memory selector sessions
}

// loadSettings reads the extras pricing settings, falling back to the launch
// defaults when rows are missing or unreadable. Settings are captured once per
// session; a mid-session admin change only affects new sessions.
func (h *Handlers) loadSettings(ctx context.Context) models.Settings {
	settings := models.DefaultSettings()
	if h.DB == nil {
		return settings
	}

	rows, err := h.DB.QueryContext(ctx, "SELECT name, value FROM visor_settings")
	if err != nil {
		log.Printf("failed to load settings, using defaults: %v", err)
		return settings
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			log.Printf("failed to scan settings row, using defaults: %v", err)
			return models.DefaultSettings()
		}
		switch name {
		case "extra_battery_price":
			if v, err := strconv.ParseFloat(value, 64); err == nil && v >= 0 {
				settings.ExtraBatteryPrice = v
			}
		case "extra_insert_price":
			if v, err := strconv.ParseFloat(value, 64); err == nil && v >= 0 {
				settings.ExtraInsertPrice = v
			}
		case "extra_insert_enabled":
			settings.ExtraInsertEnabled = value == "1" || value == "true"
		}
	}
	if err := rows.Err(); err != nil {
		log.Printf("failed to read settings rows, using defaults: %v", err)
		return models.DefaultSettings()
	}
	return settings
}

// saveSetting upserts one settings row.
func (h *Handlers) saveSetting(ctx context.Context, name, value string) error {
	_, err := h.DB.ExecContext(ctx, `
		INSERT INTO visor_settings (name, value)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)`,
		name, value)
	return err
}
