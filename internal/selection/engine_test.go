package selection

import (
	"testing"

	"bundle-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testCatalog(rules models.RuleSet) *models.CatalogPayload {
	return &models.CatalogPayload{
		Rules: rules,
		Boxes: []models.Product{
			{ID: 10, Name: "Gift Box", Type: models.ProductTypeSimple, Price: 500,
				Purchasable: true, StockStatus: models.StockStatusInStock, IsBox: true},
		},
		Sections: []models.Section{
			{
				ID:    "fabric",
				Label: "Fabric",
				Products: []models.Product{
					{ID: 1, Name: "Plain Tee", Type: models.ProductTypeSimple, Price: 400,
						Purchasable: true, StockStatus: models.StockStatusInStock},
					{ID: 2, Name: "Socks", Type: models.ProductTypeSimple, Price: 400,
						Purchasable: true, StockStatus: models.StockStatusInStock},
					{ID: 3, Name: "Scarf", Type: models.ProductTypeVariable, Price: 400,
						Purchasable: true, StockStatus: models.StockStatusInStock,
						Variations: []models.Variation{
							{ID: 31, ParentProductID: 3, Name: "Red", Price: 400,
								Purchasable: true, StockStatus: models.StockStatusInStock},
							{ID: 32, ParentProductID: 3, Name: "Blue", Price: 450,
								Purchasable: false, StockStatus: models.StockStatusOutOfStock, StockQty: intPtr(0)},
						}},
					{ID: 4, Name: "Sold Out Hat", Type: models.ProductTypeSimple, Price: 400,
						Purchasable: true, StockStatus: models.StockStatusOutOfStock},
				},
			},
		},
	}
}

func defaultRules() models.RuleSet {
	return models.RuleSet{MinItems: 3, MinTotal: 1900, RequireBox: true}
}

func TestAddItemIncrementsSingleEntry(t *testing.T) {
	e := NewEngine(testCatalog(defaultRules()))

	for i := 0; i < 5; i++ {
		require.NoError(t, e.AddItem(1, 0))
	}

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, int64(1), items[0].ProductID)
}

func TestAddItemSeparateKeysPerVariation(t *testing.T) {
	e := NewEngine(testCatalog(defaultRules()))

	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(3, 31))
	require.NoError(t, e.AddItem(3, 31))

	items := e.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, 2, items[1].Quantity)
	assert.Equal(t, "Red", items[1].OptionLabel)
}

func TestAddItemFailures(t *testing.T) {
	e := NewEngine(testCatalog(defaultRules()))

	// variable product without variation
	assert.Error(t, e.AddItem(3, 0))
	// out-of-stock variation
	assert.Error(t, e.AddItem(3, 32))
	// out-of-stock product
	assert.Error(t, e.AddItem(4, 0))
	// unknown product
	assert.Error(t, e.AddItem(999, 0))

	assert.Empty(t, e.Items())
	assert.Zero(t, e.Totals().GrandTotal)
}

func TestChangeQuantityRemovesAtZero(t *testing.T) {
	e := NewEngine(testCatalog(defaultRules()))
	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(1, 0))

	key := ItemKey{ProductID: 1}

	e.ChangeQuantity(key, -2)
	assert.Nil(t, e.Item(key))
	assert.Empty(t, e.Items())

	// further negative deltas on an absent entry are no-ops
	e.ChangeQuantity(key, -1)
	assert.Empty(t, e.Items())
}

func TestRemoveItemAndBox(t *testing.T) {
	catalog := testCatalog(defaultRules())
	e := NewEngine(catalog)

	e.SelectBox(&catalog.Boxes[0])
	require.NoError(t, e.AddItem(1, 0))

	e.RemoveItem(ItemKey{ProductID: 1})
	e.RemoveBox()

	assert.Empty(t, e.Items())
	assert.Nil(t, e.CurrentBox())
	assert.Zero(t, e.Totals().GrandTotal)
}

func TestSelectBoxReplacesPrior(t *testing.T) {
	e := NewEngine(testCatalog(defaultRules()))

	e.SelectBox(&models.Product{ID: 10, Name: "Gift Box", Price: 500})
	e.SelectBox(&models.Product{ID: 11, Name: "Deluxe Box", Price: 900})

	box := e.CurrentBox()
	require.NotNil(t, box)
	assert.Equal(t, int64(11), box.ProductID)
	assert.Equal(t, 1, box.Quantity)
	assert.Equal(t, 900.0, box.UnitPrice)
}

func TestTotalsRecomputed(t *testing.T) {
	catalog := testCatalog(defaultRules())
	e := NewEngine(catalog)

	e.SelectBox(&catalog.Boxes[0])
	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(3, 31))
	require.NoError(t, e.AddItem(3, 31))

	totals := e.Totals()
	assert.Equal(t, 3, totals.ItemsCount)
	assert.Equal(t, 1200.0, totals.ItemsTotal)
	assert.Equal(t, 500.0, totals.BoxTotal)
	assert.Equal(t, 1700.0, totals.GrandTotal)

	e.ChangeQuantity(ItemKey{ProductID: 3, VariationID: 31}, -1)
	assert.Equal(t, 1300.0, e.Totals().GrandTotal)
}

func TestReadyScenarioNeedsMoreItems(t *testing.T) {
	// box (500) + 2 items at 400 each: item count below minimum
	catalog := testCatalog(defaultRules())
	e := NewEngine(catalog)

	e.SelectBox(&catalog.Boxes[0])
	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(2, 0))

	assert.False(t, e.Ready())
	summary := e.Summary()
	assert.Equal(t, 1, summary.ItemsNeeded)
	assert.False(t, summary.CanSubmit)
}

func TestReadyScenarioTotalRequired(t *testing.T) {
	// box (500) + 3 items at 400 each: 1700 < 1900
	catalog := testCatalog(defaultRules())
	e := NewEngine(catalog)

	e.SelectBox(&catalog.Boxes[0])
	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(2, 0))
	require.NoError(t, e.AddItem(3, 31))

	assert.False(t, e.Ready())
	summary := e.Summary()
	assert.Zero(t, summary.ItemsNeeded)
	assert.Equal(t, 200.0, summary.TotalShortfall)
}

func TestReadyScenarioSatisfied(t *testing.T) {
	// box (500) + 4 items at 400 each: 2100 >= 1900
	catalog := testCatalog(defaultRules())
	e := NewEngine(catalog)

	e.SelectBox(&catalog.Boxes[0])
	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(2, 0))
	require.NoError(t, e.AddItem(3, 31))

	assert.True(t, e.Ready())
	assert.Equal(t, 2100.0, e.Totals().GrandTotal)
	assert.True(t, e.Summary().CanSubmit)
}

func TestReadyBoundaryInclusive(t *testing.T) {
	catalog := testCatalog(models.RuleSet{MinItems: 1, MinTotal: 800, RequireBox: false})
	e := NewEngine(catalog)

	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(2, 0))

	// grand total exactly equals the threshold
	assert.Equal(t, 800.0, e.Totals().GrandTotal)
	assert.True(t, e.Ready())
}

func TestReadyJustBelowBoundary(t *testing.T) {
	catalog := testCatalog(models.RuleSet{MinItems: 1, MinTotal: 800.01, RequireBox: false})
	e := NewEngine(catalog)

	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(2, 0))

	assert.False(t, e.Ready())
}

func TestBoxAloneNeverReady(t *testing.T) {
	catalog := testCatalog(models.RuleSet{MinItems: 0, MinTotal: 0, RequireBox: true})
	e := NewEngine(catalog)

	e.SelectBox(&catalog.Boxes[0])
	assert.False(t, e.Ready())
}

func TestRequestPreservesInsertionOrder(t *testing.T) {
	catalog := testCatalog(defaultRules())
	e := NewEngine(catalog)

	e.SelectBox(&catalog.Boxes[0])
	require.NoError(t, e.AddItem(2, 0))
	require.NoError(t, e.AddItem(1, 0))
	require.NoError(t, e.AddItem(2, 0))

	req := e.Request()
	require.NotNil(t, req.Box)
	assert.Equal(t, int64(10), req.Box.ProductID)
	require.Len(t, req.Items, 2)
	assert.Equal(t, int64(2), req.Items[0].ProductID)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.Equal(t, int64(1), req.Items[1].ProductID)
}
