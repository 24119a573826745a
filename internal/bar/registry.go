// Package bar holds the ordered set of named blocks that make up the status
// line and writes it in the swaybar protocol.
package bar

import (
	"errors"
	"fmt"

	"github.com/Dicklesworthstone/swaystatus/internal/model"
)

// ErrDuplicateBlock is returned when a block name is inserted twice.
var ErrDuplicateBlock = errors.New("duplicate block name")

// Registry is an ordered, name-indexed list of blocks. Order is insertion
// order and is the left-to-right order on the bar.
type Registry struct {
	blocks []model.Block
	index  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Insert appends b. Names must be unique.
func (r *Registry) Insert(b model.Block) error {
	if _, ok := r.index[b.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateBlock, b.Name)
	}
	r.index[b.Name] = len(r.blocks)
	r.blocks = append(r.blocks, b)
	return nil
}

// Find returns the block called name for in-place mutation, or nil if it was
// never inserted. The pointer is only valid until the next Insert.
func (r *Registry) Find(name string) *model.Block {
	i, ok := r.index[name]
	if !ok {
		return nil
	}
	return &r.blocks[i]
}

// IsEmpty reports whether nothing has been inserted yet.
func (r *Registry) IsEmpty() bool { return len(r.blocks) == 0 }

// Len returns the number of blocks.
func (r *Registry) Len() int { return len(r.blocks) }

// Blocks returns a copy of the blocks in order.
func (r *Registry) Blocks() []model.Block {
	out := make([]model.Block, len(r.blocks))
	copy(out, r.blocks)
	return out
}

// MarshalJSON renders the blocks as a JSON array.
func (r *Registry) MarshalJSON() ([]byte, error) {
	if len(r.blocks) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(r.blocks)
}
