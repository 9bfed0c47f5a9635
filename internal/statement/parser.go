// Package statement decodes bank statement files into normalized
// transaction records.
package statement

import (
	"context"
	"fmt"
	"io"

	"github.com/rodsouza/minhasfinancas/internal/common"
	"github.com/rodsouza/minhasfinancas/internal/model"
)

// Parser decodes one statement file format. A parse is a single pass over
// the stream; the returned sequence is finite and not restartable.
type Parser interface {
	Parse(ctx context.Context, reader io.Reader) ([]model.StatementRecord, error)
}

// Registry maps format tags to parsers. Adding a statement format is a
// registry entry, not a conditional branch.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a registry with the built-in formats registered.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	r.Register("ofx", NewOFXParser())
	return r
}

// Register associates a parser with a format tag.
func (r *Registry) Register(format string, parser Parser) {
	r.parsers[format] = parser
}

// Lookup returns the parser for a format tag.
func (r *Registry) Lookup(format string) (Parser, error) {
	parser, ok := r.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
	}
	return parser, nil
}
