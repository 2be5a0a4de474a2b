package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyleMerge(t *testing.T) {
	base := NodeKindStyle("instance")
	merged := base.Merge(NodeStatusStyle(NodeOK))

	assert.Equal(t, "box", merged.Shape)
	assert.Equal(t, ColorGreen, merged.Color)
	assert.Equal(t, LineDashed, merged.Line)
	assert.Equal(t, base, base.Merge(Style{}), "merging a zero style is a no-op")
}

func TestEdgeStatusStyle(t *testing.T) {
	assert.Equal(t, ColorYellow, EdgeStatusStyle(EdgeAdd2Existing).Color)
	assert.Equal(t, LineDashed, EdgeStatusStyle(EdgeAdd2New).Line)
	assert.Zero(t, EdgeStatusStyle(EdgeOKExisting))
	assert.Zero(t, EdgeStatusStyle(EdgeWarn))
}

func TestEdgeKindAndPolarityStyle(t *testing.T) {
	s := EdgeKindStyle("var2var").Merge(EdgePolarityStyle(false))
	assert.Equal(t, Style{Line: LineDashed, Arrow: true, Color: ColorRed}, s)
	assert.Equal(t, ColorBlack, EdgePolarityStyle(true).Color)
	assert.Zero(t, EdgeKindStyle(""))
}

func TestStyleMap(t *testing.T) {
	assert.Equal(t, map[string]any{"color": ColorRed, "width": 5}, HighlightStyle().Map())
	assert.Empty(t, Style{}.Map())
	assert.Equal(t, map[string]any{
		"shape": "box", "border": ColorBlack, "background": ColorBlack, "font_color": ColorWhite,
	}, NodeKindStyle("class").Map())
}
