package selection

import (
	"fmt"

	"bundle-service/internal/models"
)

// ItemKey identifies a selection entry by product and variation.
// VariationID is 0 for simple products.
type ItemKey struct {
	ProductID   int64
	VariationID int64
}

func (k ItemKey) String() string {
	return fmt.Sprintf("%d:%d", k.ProductID, k.VariationID)
}

// Item is one selected catalog entry. Quantity is always >= 1; dropping to
// zero removes the entry instead.
type Item struct {
	ProductID   int64
	VariationID int64
	Quantity    int
	UnitPrice   float64
	DisplayName string
	OptionLabel string
}

// Box is the optional primary selection. At most one exists at a time.
type Box struct {
	ProductID   int64
	VariationID int64
	Quantity    int
	UnitPrice   float64
	DisplayName string
}

// Totals are derived from the current state on every call, never cached.
type Totals struct {
	ItemsCount int
	ItemsTotal float64
	BoxTotal   float64
	GrandTotal float64
}

// Summary is the derived presentation state. Every displayed hint is a pure
// function of Totals and Ready.
type Summary struct {
	Totals         Totals
	ItemsNeeded    int
	BoxRequired    bool
	TotalShortfall float64
	CanSubmit      bool
}

// Engine tracks the evolving bundle selection against a catalog snapshot and
// gates the submit action. Not safe for concurrent use; the builder flow is
// single-threaded by contract.
type Engine struct {
	rules      models.RuleSet
	products   map[int64]*models.Product
	variations map[int64]map[int64]*models.Variation

	box   *Box
	items map[ItemKey]*Item
	order []ItemKey
}

// NewEngine creates an empty selection over the given catalog snapshot.
func NewEngine(payload *models.CatalogPayload) *Engine {
	e := &Engine{
		rules:      payload.Rules,
		products:   make(map[int64]*models.Product),
		variations: make(map[int64]map[int64]*models.Variation),
		items:      make(map[ItemKey]*Item),
	}

	for i := range payload.Boxes {
		e.indexProduct(&payload.Boxes[i])
	}
	for s := range payload.Sections {
		for i := range payload.Sections[s].Products {
			e.indexProduct(&payload.Sections[s].Products[i])
		}
	}

	return e
}

func (e *Engine) indexProduct(product *models.Product) {
	e.products[product.ID] = product

	if len(product.Variations) > 0 {
		byID := make(map[int64]*models.Variation, len(product.Variations))
		for i := range product.Variations {
			byID[product.Variations[i].ID] = &product.Variations[i]
		}
		e.variations[product.ID] = byID
	}
}

// SelectBox replaces any existing box with the given product at quantity 1.
// Selecting the already-selected box is idempotent.
func (e *Engine) SelectBox(product *models.Product) {
	if product == nil {
		return
	}

	e.box = &Box{
		ProductID:   product.ID,
		VariationID: 0,
		Quantity:    1,
		UnitPrice:   product.Price,
		DisplayName: product.Name,
	}
}

// RemoveBox clears the box selection.
func (e *Engine) RemoveBox() {
	e.box = nil
}

// CurrentBox returns the box selection, or nil when none is chosen.
func (e *Engine) CurrentBox() *Box {
	return e.box
}

// AddItem adds one unit of the given product (and variation, for variable
// products) to the selection. Failures leave state unchanged and are
// warnings for the caller to surface, not fatal errors.
func (e *Engine) AddItem(productID, variationID int64) error {
	product, ok := e.products[productID]
	if !ok {
		return fmt.Errorf("product %d not in catalog", productID)
	}

	unitPrice := product.Price
	optionLabel := ""

	if product.Type == models.ProductTypeVariable && variationID == 0 {
		return fmt.Errorf("product %d requires a variation", productID)
	}

	if variationID != 0 {
		variation := e.lookupVariation(productID, variationID)
		if variation == nil {
			return fmt.Errorf("variation %d not in catalog", variationID)
		}
		if !variation.Purchasable || !variation.InStock() {
			return fmt.Errorf("variation %d unavailable", variationID)
		}
		unitPrice = variation.Price
		optionLabel = variation.Name
	} else if !product.Purchasable || !product.InStock() {
		return fmt.Errorf("product %d unavailable", productID)
	}

	key := ItemKey{ProductID: productID, VariationID: variationID}
	if existing, ok := e.items[key]; ok {
		existing.Quantity++
		return nil
	}

	e.items[key] = &Item{
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    1,
		UnitPrice:   unitPrice,
		DisplayName: product.Name,
		OptionLabel: optionLabel,
	}
	e.order = append(e.order, key)
	return nil
}

// ChangeQuantity adjusts an item's quantity by delta. A resulting quantity of
// zero or below deletes the entry.
func (e *Engine) ChangeQuantity(key ItemKey, delta int) {
	item, ok := e.items[key]
	if !ok {
		return
	}

	item.Quantity += delta
	if item.Quantity <= 0 {
		e.deleteItem(key)
	}
}

// RemoveItem deletes an item unconditionally.
func (e *Engine) RemoveItem(key ItemKey) {
	e.deleteItem(key)
}

func (e *Engine) deleteItem(key ItemKey) {
	if _, ok := e.items[key]; !ok {
		return
	}
	delete(e.items, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Item returns the selection entry for a key, or nil.
func (e *Engine) Item(key ItemKey) *Item {
	return e.items[key]
}

// Items returns the selected items in insertion order.
func (e *Engine) Items() []Item {
	out := make([]Item, 0, len(e.order))
	for _, key := range e.order {
		out = append(out, *e.items[key])
	}
	return out
}

// Totals recomputes the derived totals from the current state.
func (e *Engine) Totals() Totals {
	var t Totals

	for _, item := range e.items {
		t.ItemsCount += item.Quantity
		t.ItemsTotal += float64(item.Quantity) * item.UnitPrice
	}

	if e.box != nil {
		t.BoxTotal = float64(e.box.Quantity) * e.box.UnitPrice
	}

	t.GrandTotal = t.ItemsTotal + t.BoxTotal
	return t
}

// Ready reports whether the selection satisfies every acceptance rule. The
// minimum-total boundary is inclusive: a grand total equal to the threshold
// passes. A box alone never satisfies readiness.
func (e *Engine) Ready() bool {
	t := e.Totals()

	if t.ItemsCount < e.rules.MinItems {
		return false
	}
	if e.rules.RequireBox && e.box == nil {
		return false
	}
	if e.rules.MinTotal > 0 && t.GrandTotal < e.rules.MinTotal {
		return false
	}
	if t.ItemsCount == 0 {
		return false
	}

	return true
}

// Summary derives the presentation state shown alongside the selection.
func (e *Engine) Summary() Summary {
	t := e.Totals()

	itemsNeeded := e.rules.MinItems - t.ItemsCount
	if itemsNeeded < 0 {
		itemsNeeded = 0
	}

	shortfall := 0.0
	if e.rules.MinTotal > 0 && t.GrandTotal < e.rules.MinTotal {
		shortfall = e.rules.MinTotal - t.GrandTotal
	}

	return Summary{
		Totals:         t,
		ItemsNeeded:    itemsNeeded,
		BoxRequired:    e.rules.RequireBox && e.box == nil,
		TotalShortfall: shortfall,
		CanSubmit:      e.Ready(),
	}
}

// Request serializes the current selection into the submit-bundle wire
// payload, items in insertion order.
func (e *Engine) Request() models.BundleRequest {
	req := models.BundleRequest{
		Items: make([]models.BundleItemRequest, 0, len(e.order)),
	}

	if e.box != nil {
		req.Box = &models.BundleItemRequest{
			ProductID:   e.box.ProductID,
			VariationID: e.box.VariationID,
			Quantity:    e.box.Quantity,
		}
	}

	for _, key := range e.order {
		item := e.items[key]
		req.Items = append(req.Items, models.BundleItemRequest{
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
	}

	return req
}

func (e *Engine) lookupVariation(productID, variationID int64) *models.Variation {
	byID, ok := e.variations[productID]
	if !ok {
		return nil
	}
	return byID[variationID]
}
