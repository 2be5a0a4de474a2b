package ir

// Version constants for snapshots and the tool.
const (
	// SnapshotVersion is the graph snapshot schema version.
	SnapshotVersion = "1"

	// ToolVersion is the reqgraph version.
	ToolVersion = "0.1.0"
)
