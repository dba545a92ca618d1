// Package idpkg generates globally-unique numeric identifiers for accounts
// and ATM cards. Snowflake ids come from a 63-bit keyspace and embed the node
// id and a per-node sequence, so two generated numbers never collide; the
// unique indexes in the store remain as a backstop.
package idpkg

import (
	"github.com/bwmarrin/snowflake"
)

// Generator hands out account and ATM card numbers.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator returns a Generator for the given snowflake node id (0-1023).
func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Generator{node: node}, nil
}

// AccountNumber returns a fresh account number.
func (g *Generator) AccountNumber() int64 {
	return g.node.Generate().Int64()
}

// CardNumber returns a fresh ATM card number.
func (g *Generator) CardNumber() int64 {
	return g.node.Generate().Int64()
}
