package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"go-catalog-mirror/internal/metrics"
	"go-catalog-mirror/internal/model"
	"go-catalog-mirror/internal/remote"
	"go-catalog-mirror/internal/repository"
	"go-catalog-mirror/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RetentionCap is how many of the freshest upstream products one cycle
// keeps; everything outside the kept set becomes eligible for the guarded
// sweep.
const RetentionCap = 50

// SyncService runs one reconciliation cycle against the upstream feed:
// fetch, select the retention set, upsert it, then sweep what fell out —
// all inside a single transaction.
type SyncService interface {
	RunCycle(ctx context.Context) error
}

type syncService struct {
	fetcher     remote.SnapshotFetcher
	productRepo repository.ProductRepository
	variantRepo repository.VariantRepository
	runInTx     func(fn func(tx *gorm.DB) error) error
	hub         *ws.Hub
}

func NewSyncService(
	fetcher remote.SnapshotFetcher,
	pRepo repository.ProductRepository,
	vRepo repository.VariantRepository,
	db *gorm.DB,
	hub *ws.Hub,
) SyncService {
	return &syncService{
		fetcher:     fetcher,
		productRepo: pRepo,
		variantRepo: vRepo,
		runInTx: func(fn func(tx *gorm.DB) error) error {
			return db.Transaction(fn)
		},
		hub: hub,
	}
}

// RunCycle never leaves a partially applied snapshot behind: either every
// upsert and both sweeps commit, or the cycle rolls back wholesale and the
// next scheduled run retries from scratch.
func (s *syncService) RunCycle(ctx context.Context) error {
	start := time.Now()
	cycleID := uuid.New()

	products, err := s.fetcher.FetchSnapshot(ctx)
	if err != nil {
		metrics.RecordSyncCycle(metrics.ResultFetchKO, 0, time.Since(start))
		return fmt.Errorf("sync %s: fetch snapshot: %w", cycleID, err)
	}
	if len(products) == 0 {
		// A degenerate snapshot must not trigger the sweep path at all;
		// the minGuard would also stop it, but don't rely on one net.
		log.Printf("sync %s: fetch returned empty list; skip deletion to be safe", cycleID)
		metrics.RecordSyncCycle(metrics.ResultEmpty, 0, time.Since(start))
		return nil
	}

	kept := selectRetention(products, RetentionCap)
	productCmds, variantCmds := buildUpsertCmds(kept)
	keepIDs := make([]int64, len(kept))
	for i, p := range kept {
		keepIDs[i] = p.ID
	}

	var upsertedProducts, upsertedVariants int64
	err = s.runInTx(func(tx *gorm.DB) error {
		for _, cmd := range productCmds {
			n, err := s.productRepo.Upsert(tx, cmd)
			if err != nil {
				return fmt.Errorf("upsert product %d: %w", cmd.ProductID, err)
			}
			upsertedProducts += n
		}
		for _, cmd := range variantCmds {
			n, err := s.variantRepo.Upsert(tx, cmd)
			if err != nil {
				return fmt.Errorf("upsert variant %d: %w", cmd.VariantID, err)
			}
			upsertedVariants += n
		}

		// Variants first: a variant must never outlive its product.
		if _, err := s.variantRepo.DeleteNotInProducts(tx, keepIDs, repository.DefaultMinGuard); err != nil {
			return fmt.Errorf("sweep variants: %w", err)
		}
		if _, err := s.productRepo.DeleteNotIn(tx, keepIDs, repository.DefaultMinGuard); err != nil {
			return fmt.Errorf("sweep products: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordSyncCycle(metrics.ResultStoreKO, 0, time.Since(start))
		return fmt.Errorf("sync %s: %w", cycleID, err)
	}

	took := time.Since(start)
	metrics.RecordSyncCycle(metrics.ResultOK, len(keepIDs), took)
	log.Printf("sync %s OK: kept=%d, writtenProducts=%d, writtenVariants=%d, took=%s",
		cycleID, len(keepIDs), upsertedProducts, upsertedVariants, took)

	if s.hub != nil {
		go s.hub.BroadcastEvent("sync_completed", map[string]interface{}{
			"cycle_id":         cycleID.String(),
			"kept":             len(keepIDs),
			"written_products": upsertedProducts,
			"written_variants": upsertedVariants,
			"took_ms":          took.Milliseconds(),
		})
	}
	return nil
}

// selectRetention sorts by updated_at descending with created_at as the
// fallback key; products carrying neither timestamp sort last. The first
// cap products form the authoritative kept catalog for this cycle.
func selectRetention(products []remote.Product, limit int) []remote.Product {
	sorted := make([]remote.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := effectiveTime(sorted[i]), effectiveTime(sorted[j])
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.After(*b)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func effectiveTime(p remote.Product) *time.Time {
	if p.UpdatedAt != nil {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

// buildUpsertCmds maps the kept snapshot onto storage commands. A variant's
// parent is its own declared product_id, not the product it was nested
// under; upstream re-parenting claims are taken at face value.
func buildUpsertCmds(kept []remote.Product) ([]model.ProductUpsertCmd, []model.VariantUpsertCmd) {
	productCmds := make([]model.ProductUpsertCmd, 0, len(kept))
	var variantCmds []model.VariantUpsertCmd

	for _, p := range kept {
		optionsJSON, err := marshalRemoteOptions(p.Options)
		if err != nil {
			// Options came straight out of a successful decode; a marshal
			// failure would be a programming error, not data.
			log.Printf("sync: marshal options of product %d: %v", p.ID, err)
			optionsJSON = nil
		}
		productCmds = append(productCmds, model.ProductUpsertCmd{
			ProductID:   p.ID,
			Title:       p.Title,
			Vendor:      p.Vendor,
			ProductType: p.ProductType,
			Tags:        p.Tags,
			OptionsJSON: optionsJSON,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})

		for _, v := range p.Variants {
			var imageURL *string
			if v.FeaturedImage != nil {
				imageURL = v.FeaturedImage.Src
			}
			variantCmds = append(variantCmds, model.VariantUpsertCmd{
				VariantID:    v.ID,
				ProductID:    v.ProductID,
				SKU:          v.SKU,
				ImageURL:     imageURL,
				Price:        v.Price,
				ComparePrice: v.CompareAtPrice,
				Available:    v.Available,
				Position:     v.Position,
				Option1:      v.Option1,
				Option2:      v.Option2,
				Option3:      v.Option3,
				CreatedAt:    coalesceTime(v.CreatedAt, p.CreatedAt),
				UpdatedAt:    coalesceTime(v.UpdatedAt, p.UpdatedAt),
			})
		}
	}
	return productCmds, variantCmds
}

func coalesceTime(a, b *time.Time) *time.Time {
	if a != nil {
		return a
	}
	return b
}

// marshalRemoteOptions stores the upstream option definitions verbatim,
// including the empty list for a product that declares no options.
func marshalRemoteOptions(opts []remote.Option) (json.RawMessage, error) {
	if opts == nil {
		opts = []remote.Option{}
	}
	return json.Marshal(opts)
}
