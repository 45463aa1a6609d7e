package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/cart"
	"github.com/alimranakash/visor-selection-api/internal/catalog"
	"github.com/alimranakash/visor-selection-api/internal/database"
	"github.com/alimranakash/visor-selection-api/internal/handlers"
	"github.com/alimranakash/visor-selection-api/internal/routes"
	"github.com/joho/godotenv"
)

// logoMap builds the make -> logo URL lookup from the asset base URL. Makes
// without an entry render as text labels on the frontend.
func logoMap() map[string]string {
	base := os.Getenv("LOGO_BASE_URL")
	if base == "" {
		return map[string]string{}
	}
	return map[string]string{
		"shoei":     base + "/logo-shoei.png",
		"arai":      base + "/logo-arai.png",
		"klim":      base + "/logo-klim.png",
		"schuberth": base + "/logo-schuberth.png",
	}
}

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 2. --- Catalog Store ---
	// Snapshots are cached for 24 hours, the same window the storefront's
	// transient cache used. Admins can force a refresh at any time.
	catalogStore := catalog.NewStore(db, logoMap(), 24*time.Hour)
	if _, err := catalogStore.Refresh(context.Background()); err != nil {
		log.Fatalf("Failed to load initial catalog snapshot: %v", err)
	}

	// 3. --- Cart Submission Adapter ---
	cartEndpoint := os.Getenv("CART_ENDPOINT")
	if cartEndpoint == "" {
		log.Fatal("CRITICAL ERROR: CART_ENDPOINT environment variable is not set. Cannot submit to the cart service.")
	}
	adapter := cart.NewAdapter(cartEndpoint, nil)

	// --- Application Setup ---
	app := &handlers.Handlers{
		DB:        db,
		Catalog:   catalogStore,
		Submitter: adapter,
		Sessions:  handlers.NewSessionStore(2 * time.Hour),
	}

	// 4. --- Background Worker ---
	// Periodically re-checks the catalog snapshot (picking up expiry) and
	// prunes abandoned selector sessions.
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		log.Println("Background worker started: catalog refresh + session pruning")

		for range ticker.C {
			if _, err := catalogStore.Snapshot(context.Background()); err != nil {
				log.Printf("Background catalog check failed: %v", err)
			}
			if removed := app.Sessions.PruneExpired(); removed > 0 {
				log.Printf("Pruned %d expired selector sessions", removed)
			}
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting Visor Selection API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
