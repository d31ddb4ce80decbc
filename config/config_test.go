package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSections(t *testing.T) {
	raw := "Summer Fabric | summer-fabric\nWinter Fabric | winter-fabric\n\n  \nextras"

	sections := ParseSections(raw)

	assert.Len(t, sections, 3)
	assert.Equal(t, SectionRef{Label: "Summer Fabric", Slug: "summer-fabric"}, sections[0])
	assert.Equal(t, SectionRef{Label: "Winter Fabric", Slug: "winter-fabric"}, sections[1])
	assert.Equal(t, SectionRef{Slug: "extras"}, sections[2])
}

func TestParseSectionsNumericRefFirst(t *testing.T) {
	sections := ParseSections("42 | Summer Fabric")

	assert.Len(t, sections, 1)
	assert.Equal(t, "Summer Fabric", sections[0].Label)
	assert.Equal(t, "42", sections[0].Slug)
}

func TestParseSectionsEmpty(t *testing.T) {
	assert.Empty(t, ParseSections(""))
	assert.Empty(t, ParseSections("  \n | \n"))
}

func TestNormalizeRedirect(t *testing.T) {
	assert.Equal(t, "cart", normalizeRedirect("cart"))
	assert.Equal(t, "stay", normalizeRedirect("stay"))
	assert.Equal(t, "checkout", normalizeRedirect("somewhere-else"))
}
