package catalog

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/alimranakash/visor-selection-api/internal/models"
)

// Store loads the product catalog from MySQL and keeps a cached Snapshot with a
// TTL. The cache plays the role the storefront's transient cache used to: one
// query per expiry window, with an explicit admin-triggered invalidation.
//
// Sessions hold on to the *Snapshot they were created with, so a refresh never
// changes what an in-flight session sees.
type Store struct {
	db    *sql.DB
	logos map[string]string
	ttl   time.Duration

	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore creates a catalog store. ttl <= 0 disables expiry (refresh only via
// Invalidate or Refresh).
func NewStore(db *sql.DB, logos map[string]string, ttl time.Duration) *Store {
	return &Store{
		db:    db,
		logos: logos,
		ttl:   ttl,
	}
}

// Snapshot returns the cached snapshot, reloading from the database when the
// cache is empty or past its TTL. If a reload fails but a previous snapshot
// exists, the stale snapshot is served and the error is logged, so a database
// blip does not take the selector down.
func (st *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	st.mu.RLock()
	snap := st.snap
	st.mu.RUnlock()

	if snap != nil && (st.ttl <= 0 || time.Since(snap.LoadedAt()) < st.ttl) {
		return snap, nil
	}

	fresh, err := st.Refresh(ctx)
	if err != nil {
		if snap != nil {
			log.Printf("catalog refresh failed, serving stale snapshot: %v", err)
			return snap, nil
		}
		return nil, err
	}
	return fresh, nil
}

// Refresh reloads the catalog from the database unconditionally and swaps the
// cached snapshot.
func (st *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT id, make, model, pack, price
		FROM visor_products
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.VisorProduct
	for rows.Next() {
		var p models.VisorProduct
		var make, model, pack sql.NullString
		if err := rows.Scan(&p.ID, &make, &model, &pack, &p.Price); err != nil {
			return nil, err
		}
		// NewSnapshot drops rows with missing facets; NULLs become "".
		p.Make = make.String
		p.Model = model.String
		p.Pack = models.PackType(pack.String)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap := NewSnapshot(products, st.logos)

	st.mu.Lock()
	st.snap = snap
	st.mu.Unlock()

	log.Printf("catalog snapshot refreshed: %d products", snap.Len())
	return snap, nil
}

// Invalidate drops the cached snapshot. The next Snapshot call reloads.
func (st *Store) Invalidate() {
	st.mu.Lock()
	st.snap = nil
	st.mu.Unlock()
}

// Status reports whether a snapshot is cached, how many products it holds and
// when it was loaded. Backs the admin cache page.
func (st *Store) Status() (active bool, count int, loadedAt time.Time) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.snap == nil {
		return false, 0, time.Time{}
	}
	return true, st.snap.Len(), st.snap.LoadedAt()
}
