package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bundle-service/config"
	"bundle-service/internal/models"
	"bundle-service/internal/redisclient"
	"bundle-service/internal/store"
	"bundle-service/internal/util"

	"go.uber.org/zap"
)

// PayloadBuilder assembles the catalog payload served to the builder UI.
type PayloadBuilder struct {
	store    *store.Store
	redis    *redisclient.Client
	currency models.Currency
	rules    models.RuleSet
	sections []config.SectionRef
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewPayloadBuilder creates a new catalog payload builder
func NewPayloadBuilder(
	store *store.Store,
	redis *redisclient.Client,
	currency models.Currency,
	rules models.RuleSet,
	sections []config.SectionRef,
	cacheTTL time.Duration,
) *PayloadBuilder {
	return &PayloadBuilder{
		store:    store,
		redis:    redis,
		currency: currency,
		rules:    rules,
		sections: sections,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// BuildPayload returns the catalog payload, serving from the Redis cache
// when a fresh copy exists.
func (b *PayloadBuilder) BuildPayload(ctx context.Context) (*models.CatalogPayload, error) {
	ctx, span := util.StartSpan(ctx, "PayloadBuilder.BuildPayload")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CatalogPayloadLatency.Observe(time.Since(start).Seconds())
	}()

	if cached, err := b.redis.GetCatalogPayload(ctx); err == nil && cached != nil {
		var payload models.CatalogPayload
		if err := json.Unmarshal(cached, &payload); err == nil {
			util.CatalogCacheHitsTotal.WithLabelValues("hit").Inc()
			return &payload, nil
		}
		b.logger.Warn("Discarding unreadable cached catalog payload", zap.Error(err))
	}
	util.CatalogCacheHitsTotal.WithLabelValues("miss").Inc()

	boxes, err := b.store.GetBoxProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load box products: %w", err)
	}
	for i := range boxes {
		if err := b.attachVariations(ctx, &boxes[i]); err != nil {
			return nil, err
		}
	}

	sections, err := b.collectSections(ctx)
	if err != nil {
		return nil, err
	}

	payload := &models.CatalogPayload{
		Currency: b.currency,
		Boxes:    boxes,
		Sections: sections,
		Rules:    b.rules,
		Intro: fmt.Sprintf(
			"Select a Box and any of our products, then pay at once. Ensure your order totals at least %s to avoid delivery issues!",
			models.FormatPrice(b.currency, b.rules.MinTotal),
		),
		I18n: i18nStrings(),
	}

	if data, err := json.Marshal(payload); err == nil {
		if err := b.redis.SetCatalogPayload(ctx, data, b.cacheTTL); err != nil {
			b.logger.Warn("Failed to cache catalog payload", zap.Error(err))
		}
	}

	return payload, nil
}

func (b *PayloadBuilder) collectSections(ctx context.Context) ([]models.Section, error) {
	sections := make([]models.Section, 0, len(b.sections))

	for _, ref := range b.sections {
		category, err := b.store.GetCategoryBySlug(ctx, ref.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve section %q: %w", ref.Slug, err)
		}
		if category == nil {
			b.logger.Warn("Skipping unknown catalog section", zap.String("slug", ref.Slug))
			continue
		}

		products, err := b.store.GetProductsByCategory(ctx, category.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load section products: %w", err)
		}
		for i := range products {
			if err := b.attachVariations(ctx, &products[i]); err != nil {
				return nil, err
			}
		}

		label := ref.Label
		if label == "" {
			label = category.Name
		}

		sections = append(sections, models.Section{
			ID:          category.Slug,
			Label:       label,
			Description: category.Description,
			Permalink:   category.Permalink,
			Products:    products,
		})
	}

	return sections, nil
}

func (b *PayloadBuilder) attachVariations(ctx context.Context, product *models.Product) error {
	if product.Type != models.ProductTypeVariable {
		return nil
	}

	variations, err := b.store.GetVariationsByProductID(ctx, product.ID)
	if err != nil {
		return fmt.Errorf("failed to load variations for product %d: %w", product.ID, err)
	}
	product.Variations = variations
	return nil
}

func i18nStrings() map[string]string {
	return map[string]string{
		"select_box":       "Select Box",
		"box_selected":     "Selected",
		"view_product":     "View product",
		"view_more":        "View more",
		"box_label":        "Box",
		"choose_box":       "Choose your box",
		"or_add":           "Or add from",
		"add_to_box":       "Add to the Box",
		"select_variation": "Select an option",
		"quantity":         "Quantity",
		"remove":           "Remove",
		"unit_price":       "Unit price:",
		"subtotal":         "Subtotal:",
		"items_needed":     "Your bundle needs at least %d more item(s).",
		"box_required":     "Add a required single product from the box collection to proceed.",
		"total_required":   "Your total amount needs to be at least %s to proceed.",
		"button_label":     "Add to Cart",
		"button_pending":   "Adding…",
		"added":            "Bundle added! Redirecting…",
		"error_generic":    "Something went wrong. Please try again.",
		"empty_section":    "No products found in this section yet.",
	}
}
