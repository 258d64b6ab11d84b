package codec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrImportIncomplete indicates the text gathered so far does not parse yet.
	ErrImportIncomplete = errors.New("import payload is incomplete")
	// ErrImportTooLarge indicates the gathered text passed the configured ceiling.
	ErrImportTooLarge = errors.New("import payload is too large")
)

// DefaultImportLimit bounds an import payload when no limit is configured.
const DefaultImportLimit = 4 << 20

// Assembler joins an import payload that the transport delivered as several
// messages. It is owned by a single session.
type Assembler struct {
	limit int
	buf   strings.Builder
}

// NewAssembler returns an assembler that refuses payloads above limit bytes.
func NewAssembler(limit int) *Assembler {
	if limit <= 0 {
		limit = DefaultImportLimit
	}
	return &Assembler{limit: limit}
}

// Add appends fragment and tries to parse everything received so far.
func (a *Assembler) Add(fragment string) (Portable, error) {
	if a.buf.Len()+len(fragment) > a.limit {
		return Portable{}, fmt.Errorf("%d bytes over a %d byte limit: %w", a.buf.Len()+len(fragment), a.limit, ErrImportTooLarge)
	}
	a.buf.WriteString(fragment)
	p, err := Decode([]byte(a.buf.String()))
	if err != nil {
		return Portable{}, fmt.Errorf("%w: %v", ErrImportIncomplete, err)
	}
	return p, nil
}

// Len reports how many bytes have been gathered.
func (a *Assembler) Len() int { return a.buf.Len() }
