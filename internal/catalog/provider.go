package catalog

import (
	"context"

	"bundle-service/internal/models"
	"bundle-service/internal/store"
	"bundle-service/internal/util"
)

// Provider resolves authoritative product and variation snapshots. The bundle
// pipeline never trusts client-held prices; it re-derives them through here.
type Provider interface {
	// GetProduct returns the product snapshot, or nil when the id does not resolve.
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	// GetVariation returns the variation snapshot, or nil when it does not
	// resolve or does not belong to the given product.
	GetVariation(ctx context.Context, productID, variationID int64) (*models.Variation, error)
}

// StoreProvider serves catalog snapshots from the database store.
type StoreProvider struct {
	store *store.Store
}

// NewStoreProvider creates a store-backed catalog provider
func NewStoreProvider(store *store.Store) *StoreProvider {
	return &StoreProvider{store: store}
}

// GetProduct retrieves a product snapshot by ID
func (p *StoreProvider) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "StoreProvider.GetProduct")
	defer span.End()

	product, err := p.store.GetProductByID(ctx, id)
	if err != nil || product == nil {
		return product, err
	}

	if product.Type == models.ProductTypeVariable {
		variations, err := p.store.GetVariationsByProductID(ctx, id)
		if err != nil {
			return nil, err
		}
		product.Variations = variations
	}

	return product, nil
}

// GetVariation retrieves a variation snapshot by ID
func (p *StoreProvider) GetVariation(ctx context.Context, productID, variationID int64) (*models.Variation, error) {
	ctx, span := util.StartSpan(ctx, "StoreProvider.GetVariation")
	defer span.End()

	variation, err := p.store.GetVariationByID(ctx, variationID)
	if err != nil || variation == nil {
		return variation, err
	}

	if variation.ParentProductID != productID {
		return nil, nil
	}

	return variation, nil
}
