package status

// Legend colours.
const (
	ColorBlue   = "#1f77b3"
	ColorGreen  = "#2ba02b"
	ColorRed    = "#d62628"
	ColorYellow = "#bcbc21"
	ColorBlack  = "#000000"
	ColorWhite  = "#ffffff"
)

// Line styles.
const (
	LineDashed = "dashed"
	LineSolid  = "solid"
)

// Style is the visual hint attached to a node or edge for a renderer.
// Zero fields mean "no opinion".
type Style struct {
	Shape      string `json:"shape,omitempty"`
	Color      string `json:"color,omitempty"`
	Border     string `json:"border,omitempty"`
	Background string `json:"background,omitempty"`
	FontColor  string `json:"font_color,omitempty"`
	Line       string `json:"line,omitempty"`
	Arrow      bool   `json:"arrow,omitempty"`
	Width      int    `json:"width,omitempty"`
}

// Merge returns s with every non-zero field of over applied on top.
func (s Style) Merge(over Style) Style {
	if over.Shape != "" {
		s.Shape = over.Shape
	}
	if over.Color != "" {
		s.Color = over.Color
	}
	if over.Border != "" {
		s.Border = over.Border
	}
	if over.Background != "" {
		s.Background = over.Background
	}
	if over.FontColor != "" {
		s.FontColor = over.FontColor
	}
	if over.Line != "" {
		s.Line = over.Line
	}
	if over.Arrow {
		s.Arrow = true
	}
	if over.Width != 0 {
		s.Width = over.Width
	}
	return s
}

// Map returns the set fields keyed by their JSON names, for snapshots.
func (s Style) Map() map[string]any {
	out := map[string]any{}
	set := func(k, v string) {
		if v != "" {
			out[k] = v
		}
	}
	set("shape", s.Shape)
	set("color", s.Color)
	set("border", s.Border)
	set("background", s.Background)
	set("font_color", s.FontColor)
	set("line", s.Line)
	if s.Arrow {
		out["arrow"] = true
	}
	if s.Width != 0 {
		out["width"] = s.Width
	}
	return out
}

// NodeKindStyle returns the base style for a node kind
// ("variable", "class" or "instance").
func NodeKindStyle(kind string) Style {
	switch kind {
	case "variable", "instance":
		return Style{Shape: "box", Border: ColorBlack, Background: ColorWhite, Line: LineDashed}
	case "class":
		return Style{Shape: "box", Border: ColorBlack, Background: ColorBlack, FontColor: ColorWhite}
	}
	return Style{}
}

// NodeStatusStyle returns the overlay for a node status.
func NodeStatusStyle(n Node) Style {
	switch n {
	case NodeOK:
		return Style{Color: ColorGreen}
	case NodeNew:
		return Style{Color: ColorRed}
	case NodeExisting:
		return Style{Color: ColorBlue}
	}
	return Style{}
}

// EdgeKindStyle returns the base style for an edge kind
// ("var2var" or "var2class").
func EdgeKindStyle(kind string) Style {
	switch kind {
	case "var2var":
		return Style{Line: LineDashed, Arrow: true}
	case "var2class":
		return Style{Line: LineSolid, Arrow: true}
	}
	return Style{}
}

// EdgePolarityStyle colours required edges black and forbidden ones red.
func EdgePolarityStyle(mustExist bool) Style {
	if mustExist {
		return Style{Color: ColorBlack}
	}
	return Style{Color: ColorRed}
}

// EdgeStatusStyle returns the overlay for an edge status. Context statuses
// (ok_existing, del_existing, add2new_existing) and warn carry none.
func EdgeStatusStyle(e Edge) Style {
	switch e {
	case EdgeOK:
		return Style{Color: ColorGreen, Line: LineSolid}
	case EdgeDel:
		return Style{Color: ColorRed, Line: LineSolid}
	case EdgeAdd2OK, EdgeAdd2New:
		return Style{Color: ColorRed, Line: LineDashed}
	case EdgeAdd2Existing:
		return Style{Color: ColorYellow, Line: LineDashed}
	}
	return Style{}
}

// HighlightStyle marks knowledge-graph edges matched by a query result.
func HighlightStyle() Style {
	return Style{Color: ColorRed, Width: 5}
}
