// Package idgen produces order numbers that are unique across service replicas.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
)

// Module provides the order number generator.
var Module = fx.Provide(newGenerator)

// Snowflake hands out time-ordered numeric identifiers.
type Snowflake struct {
	node *snowflake.Node
}

// New creates a generator for nodeID, which must be unique per running replica.
func New(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

// Next returns a fresh order number.
func (s *Snowflake) Next() string {
	return s.node.Generate().String()
}

func newGenerator(cfg *config.Config) (*Snowflake, error) {
	return New(cfg.NodeID)
}
