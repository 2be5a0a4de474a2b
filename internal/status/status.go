// Package status holds the node/edge validation states shared by
// instantiation and solving, and the visual legend attached to them.
//
// Edge status is a pure function of the endpoint statuses, whether the edge
// is asserted in the knowledge graph and whether the requirement demands it.
// ClassifyEdge is the only way an edge status is computed.
package status

// Node is the validation state of a query-graph node.
type Node string

const (
	// NodeUnset marks nodes that have not been classified (variables and
	// classes before instantiation).
	NodeUnset Node = ""

	// NodeOK: bound to an individual that exists in the knowledge graph.
	NodeOK Node = "ok"

	// NodeNew: bound to a value with no knowledge-graph counterpart.
	NodeNew Node = "new"

	// NodeExisting: a knowledge-graph individual pulled in as context,
	// never bound by the query.
	NodeExisting Node = "existing"
)

// Edge is the validation state of a query-graph edge.
type Edge string

const (
	EdgeOK              Edge = "ok"
	EdgeDel             Edge = "del"
	EdgeAdd2OK          Edge = "add2ok"
	EdgeAdd2New         Edge = "add2new"
	EdgeOKExisting      Edge = "ok_existing"
	EdgeDelExisting     Edge = "del_existing"
	EdgeAdd2Existing    Edge = "add2existing"
	EdgeAdd2NewExisting Edge = "add2new_existing"
	EdgeWarn            Edge = "warn"
)

// AllEdges lists every edge status in table order.
func AllEdges() []Edge {
	return []Edge{
		EdgeOK, EdgeDel, EdgeAdd2OK, EdgeAdd2New,
		EdgeOKExisting, EdgeDelExisting, EdgeAdd2Existing, EdgeAdd2NewExisting,
		EdgeWarn,
	}
}

// Valid reports whether e is one of the nine classified values.
func (e Edge) Valid() bool {
	for _, v := range AllEdges() {
		if e == v {
			return true
		}
	}
	return false
}

// IsAdd reports whether the edge is a missing required assertion.
func (e Edge) IsAdd() bool {
	switch e {
	case EdgeAdd2OK, EdgeAdd2New, EdgeAdd2Existing, EdgeAdd2NewExisting:
		return true
	}
	return false
}

// IsDel reports whether the edge is an asserted relation the requirement
// forbids.
func (e Edge) IsDel() bool {
	return e == EdgeDel || e == EdgeDelExisting
}

// IsWarn reports whether the edge fell outside the supported combinations.
func (e Edge) IsWarn() bool {
	return e == EdgeWarn
}

// pairClass groups endpoint status pairs into the rows of the status table.
type pairClass int

const (
	pairUnsupported pairClass = iota
	pairOKOK
	pairNew
	pairExisting
	pairNewExisting
)

func classifyPair(s, o Node) pairClass {
	has := func(a, b Node) bool {
		return (s == a && o == b) || (s == b && o == a)
	}
	switch {
	case has(NodeOK, NodeOK):
		return pairOKOK
	case has(NodeOK, NodeNew), has(NodeNew, NodeNew):
		return pairNew
	case has(NodeOK, NodeExisting), has(NodeExisting, NodeExisting):
		return pairExisting
	case has(NodeNew, NodeExisting):
		return pairNewExisting
	}
	return pairUnsupported
}

// ClassifyEdge returns the status of an edge between endpoints with
// statuses s and o. The result does not depend on edge direction.
//
// The second return value is false when the endpoint pair has no row in the
// table (an unset or unknown node status); the edge is then classified
// EdgeWarn and should be reported as a structural inconsistency.
func ClassifyEdge(s, o Node, exists, mustExist bool) (Edge, bool) {
	switch classifyPair(s, o) {
	case pairOKOK:
		switch {
		case exists && mustExist:
			return EdgeOK, true
		case exists:
			return EdgeDel, true
		case mustExist:
			return EdgeAdd2OK, true
		}
		return EdgeWarn, true
	case pairNew:
		if mustExist {
			return EdgeAdd2New, true
		}
		return EdgeWarn, true
	case pairExisting:
		switch {
		case exists && mustExist:
			return EdgeOKExisting, true
		case exists:
			return EdgeDelExisting, true
		case mustExist:
			return EdgeAdd2Existing, true
		}
		return EdgeWarn, true
	case pairNewExisting:
		if mustExist {
			return EdgeAdd2NewExisting, true
		}
		return EdgeWarn, true
	}
	return EdgeWarn, false
}
