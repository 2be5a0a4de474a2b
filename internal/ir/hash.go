package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainGraph  = "reqgraph/graph/v1"
	DomainResult = "reqgraph/result/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// GraphHash computes the content hash of a graph snapshot
// (see graph.Graph.Snapshot). Two graphs with the same nodes, edges and
// attributes hash identically regardless of construction order.
func GraphHash(snapshot map[string]any) (string, error) {
	canonical, err := MarshalCanonical(snapshot)
	if err != nil {
		return "", fmt.Errorf("GraphHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainGraph, canonical), nil
}

// ResultHash computes the content hash of a result set, preserving row order.
func ResultHash(rs ResultSet) (string, error) {
	rows := make([]any, len(rs.Rows))
	for i, row := range rs.Rows {
		rows[i] = row
	}
	canonical, err := MarshalCanonical(map[string]any{
		"columns": rs.Columns,
		"rows":    rows,
	})
	if err != nil {
		return "", fmt.Errorf("ResultHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}
