package bundle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bundle-service/config"
	"bundle-service/internal/cartstore"
	"bundle-service/internal/catalog"
	"bundle-service/internal/models"
	"bundle-service/internal/util"

	"go.uber.org/zap"
)

// Service is the authoritative server-side validator. It re-checks a
// submitted selection against live catalog data and performs the cart
// mutation, rolling back already-inserted lines on a later failure. Working
// state is request-scoped; nothing survives past the response.
type Service struct {
	provider catalog.Provider
	cart     cartstore.Cart
	rules    models.RuleSet
	currency models.Currency
	redirect string
	checkout string
	cartURL  string
	logger   *zap.Logger
}

// NewService creates a bundle service
func NewService(
	provider catalog.Provider,
	cart cartstore.Cart,
	rules models.RuleSet,
	currency models.Currency,
	bundleCfg config.BundleConfig,
) *Service {
	return &Service{
		provider: provider,
		cart:     cart,
		rules:    rules,
		currency: currency,
		redirect: bundleCfg.RedirectTo,
		checkout: bundleCfg.CheckoutURL,
		cartURL:  bundleCfg.CartURL,
		logger:   util.GetLogger(),
	}
}

// hydrated is one validated line carrying the authoritative price.
type hydrated struct {
	line      models.CartLine
	lineTotal float64
}

// Submit runs the full pipeline: sanitize, structural check, hydrate,
// rule check, cart mutation, response. Either every line lands in the cart
// or none does.
func (s *Service) Submit(ctx context.Context, sessionID string, req *models.BundleRequest) (*models.BundleResponse, *Error) {
	ctx, span := util.StartSpan(ctx, "BundleService.Submit")
	defer span.End()

	util.BundlesSubmittedTotal.Inc()

	if err := s.cart.Ping(ctx); err != nil {
		s.logger.Error("Cart service unavailable", zap.Error(err))
		return nil, s.rejected(noCart())
	}

	if req == nil {
		return nil, s.rejected(invalidPayload())
	}

	box := sanitizeItem(req.Box)
	items := make([]models.BundleItemRequest, 0, len(req.Items))
	for i := range req.Items {
		items = append(items, *sanitizeItem(&req.Items[i]))
	}

	if s.rules.RequireBox && (box == nil || box.ProductID == 0) {
		return nil, s.rejected(missingBox())
	}

	entries, itemCount, grandTotal, herr := s.hydrateAll(ctx, box, items)
	if herr != nil {
		return nil, s.rejected(herr)
	}

	if s.rules.MinItems > 0 && itemCount < s.rules.MinItems {
		return nil, s.rejected(reject(CodeMinItems,
			fmt.Sprintf("Add at least %d items to continue.", s.rules.MinItems),
			http.StatusBadRequest))
	}

	if s.rules.MinTotal > 0 && grandTotal < s.rules.MinTotal {
		return nil, s.rejected(reject(CodeMinTotal,
			fmt.Sprintf("Order total must reach %s.", models.FormatPrice(s.currency, s.rules.MinTotal)),
			http.StatusBadRequest))
	}

	if merr := s.mutateCart(ctx, sessionID, entries); merr != nil {
		return nil, s.rejected(merr)
	}

	util.BundlesAddedTotal.Inc()
	s.logger.Info("Bundle added to cart",
		zap.String("session_id", sessionID),
		zap.Int("lines", len(entries)),
		zap.Float64("grand_total", grandTotal))

	return &models.BundleResponse{
		Success:  true,
		Total:    models.FormatPrice(s.currency, grandTotal),
		Redirect: s.redirectURL(),
	}, nil
}

// hydrateAll resolves the box (first) and every item against the catalog.
// Any failure aborts the whole submission; partial results are discarded.
func (s *Service) hydrateAll(ctx context.Context, box *models.BundleItemRequest, items []models.BundleItemRequest) ([]hydrated, int, float64, *Error) {
	ctx, span := util.StartSpan(ctx, "BundleService.Hydrate")
	defer span.End()

	start := time.Now()
	defer func() {
		util.HydrationLatency.Observe(time.Since(start).Seconds())
	}()

	var entries []hydrated
	var itemCount int
	var grandTotal float64

	if box != nil && box.ProductID != 0 {
		entry, herr := s.hydrateOne(ctx, box, true)
		if herr != nil {
			return nil, 0, 0, herr
		}
		entries = append(entries, *entry)
		grandTotal += entry.lineTotal
	}

	for i := range items {
		entry, herr := s.hydrateOne(ctx, &items[i], false)
		if herr != nil {
			return nil, 0, 0, herr
		}
		entries = append(entries, *entry)
		grandTotal += entry.lineTotal
		itemCount += entry.line.Quantity
	}

	return entries, itemCount, grandTotal, nil
}

// hydrateOne resolves a single submitted reference into an authoritative
// cart line. Client-held prices are never consulted.
func (s *Service) hydrateOne(ctx context.Context, item *models.BundleItemRequest, isBox bool) (*hydrated, *Error) {
	if item.ProductID == 0 {
		return nil, missingProduct()
	}

	product, err := s.provider.GetProduct(ctx, item.ProductID)
	if err != nil {
		s.logger.Error("Catalog lookup failed", zap.Int64("product_id", item.ProductID), zap.Error(err))
		return nil, invalidProduct()
	}
	if product == nil {
		return nil, invalidProduct()
	}

	unitPrice := product.Price
	name := product.Name
	purchasable := product.Purchasable && product.InStock()
	stockQty := product.StockQty
	var attributes map[string]string

	if item.VariationID != 0 {
		variation, err := s.provider.GetVariation(ctx, item.ProductID, item.VariationID)
		if err != nil {
			s.logger.Error("Variation lookup failed", zap.Int64("variation_id", item.VariationID), zap.Error(err))
			return nil, invalidVariation()
		}
		if variation == nil {
			return nil, invalidVariation()
		}

		unitPrice = variation.Price
		purchasable = variation.Purchasable && variation.InStock()
		stockQty = variation.StockQty
		attributes = variation.Attributes
	} else if product.Type == models.ProductTypeVariable {
		// a variable product cannot be added without choosing a variation
		return nil, invalidVariation()
	}

	if !purchasable {
		return nil, unpurchasable()
	}

	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}

	if stockQty != nil && *stockQty < quantity {
		return nil, notEnoughStock()
	}

	return &hydrated{
		line: models.CartLine{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Name:        name,
			IsBox:       isBox,
			Attributes:  attributes,
		},
		lineTotal: unitPrice * float64(quantity),
	}, nil
}

// mutateCart inserts the hydrated lines one at a time, box first, then items
// in payload order. A failure at position k removes every key inserted before
// it so the cart ends in its pre-submission state.
func (s *Service) mutateCart(ctx context.Context, sessionID string, entries []hydrated) *Error {
	ctx, span := util.StartSpan(ctx, "BundleService.MutateCart")
	defer span.End()

	addedKeys := make([]string, 0, len(entries))

	for i := range entries {
		key, err := s.cart.Add(ctx, sessionID, entries[i].line)
		if err != nil {
			s.logger.Error("Cart insertion failed, rolling back",
				zap.String("session_id", sessionID),
				zap.Int64("product_id", entries[i].line.ProductID),
				zap.Int("inserted", len(addedKeys)),
				zap.Error(err))
			s.rollback(ctx, sessionID, addedKeys)
			return addFailed()
		}

		util.CartInsertionsTotal.Inc()
		addedKeys = append(addedKeys, key)
	}

	return nil
}

func (s *Service) rollback(ctx context.Context, sessionID string, keys []string) {
	if len(keys) == 0 {
		return
	}

	util.CartRollbacksTotal.Inc()

	for _, key := range keys {
		if err := s.cart.Remove(ctx, sessionID, key); err != nil {
			s.logger.Error("Failed to remove cart line during rollback",
				zap.String("session_id", sessionID),
				zap.String("item_key", key),
				zap.Error(err))
		}
	}
}

func (s *Service) redirectURL() *string {
	switch s.redirect {
	case models.RedirectCheckout:
		url := s.checkout
		return &url
	case models.RedirectCart:
		url := s.cartURL
		return &url
	}
	return nil
}

func (s *Service) rejected(err *Error) *Error {
	util.BundlesRejectedTotal.WithLabelValues(err.Code).Inc()
	return err
}

func sanitizeItem(item *models.BundleItemRequest) *models.BundleItemRequest {
	if item == nil {
		return nil
	}

	out := &models.BundleItemRequest{
		ProductID:   item.ProductID,
		VariationID: item.VariationID,
		Quantity:    item.Quantity,
	}
	if out.ProductID < 0 {
		out.ProductID = 0
	}
	if out.VariationID < 0 {
		out.VariationID = 0
	}
	if out.Quantity < 1 {
		out.Quantity = 1
	}
	return out
}
