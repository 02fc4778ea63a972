package cache

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/matzehuels/nodeflow/pkg/graph"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DocumentHash identifies what a diagram of doc shows. Node positions are
// editor layout and never reach a diagram, so they are left out: moving a
// node does not invalidate its artifacts.
func DocumentHash(doc graph.Document) (string, error) {
	stripped := graph.Document{
		Nodes: make([]graph.NodeRecord, len(doc.Nodes)),
		Edges: doc.Edges,
	}
	for i, rec := range doc.Nodes {
		rec.Pos = nil
		stripped.Nodes[i] = rec
	}
	data, err := graph.MarshalDocument(stripped)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
