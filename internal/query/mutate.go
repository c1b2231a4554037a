package query

import (
	"fmt"
	"slices"
)

// AddBlock appends b, joined to the previous block by AND.
func (c *Config) AddBlock(b Block) {
	if len(c.Blocks) > 0 {
		c.Operators = append(c.Operators, And)
	}
	c.Blocks = append(c.Blocks, b)
}

// InsertBlock places b at index i (0 <= i <= len(Blocks)) and inserts one
// AND operator next to it. The operator that previously joined blocks i-1
// and i now joins the new block and its right neighbour.
func (c *Config) InsertBlock(i int, b Block) error {
	if i < 0 || i > len(c.Blocks) {
		return fmt.Errorf("%w: insert at %d of %d", ErrIndex, i, len(c.Blocks))
	}
	if len(c.Blocks) > 0 {
		at := i - 1
		if at < 0 {
			at = 0
		}
		c.Operators = slices.Insert(c.Operators, at, And)
	}
	c.Blocks = slices.Insert(c.Blocks, i, b)
	return nil
}

// RemoveBlock deletes the block at index i together with the operator on
// its left (or on its right for the first block).
func (c *Config) RemoveBlock(i int) error {
	if i < 0 || i >= len(c.Blocks) {
		return fmt.Errorf("%w: remove %d of %d", ErrIndex, i, len(c.Blocks))
	}
	if len(c.Operators) > 0 {
		at := i - 1
		if at < 0 {
			at = 0
		}
		c.Operators = slices.Delete(c.Operators, at, at+1)
	}
	c.Blocks = slices.Delete(c.Blocks, i, i+1)
	return nil
}

// SetOperator changes the operator between blocks i and i+1.
func (c *Config) SetOperator(i int, op Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: operator %q", ErrInconsistent, op)
	}
	if i < 0 || i >= len(c.Operators) {
		return fmt.Errorf("%w: operator %d of %d", ErrIndex, i, len(c.Operators))
	}
	c.Operators[i] = op
	return nil
}

// NextBlockName returns the first "Group N" name not already taken,
// starting from N = len(Blocks)+1.
func (c *Config) NextBlockName() string {
	for n := len(c.Blocks) + 1; ; n++ {
		name := fmt.Sprintf("Group %d", n)
		if _, taken := c.Block(name); !taken {
			return name
		}
	}
}
