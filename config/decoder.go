// Package config decodes game definition records.
//
// Every record kind uses the same encoding: default values are applied, then
// the decoder repeatedly reads a one-byte opcode and applies its operands
// until it reads opcode 0. Opcode semantics differ per kind and live in one
// table per kind; the loop itself is shared.
//
// Decoded records are shared by caches and must be treated as immutable.
package config

import (
	"fmt"
	"log/slog"

	"github.com/meigma/gamecache/internal/buffer"
)

// Kind names a record kind.
type Kind string

// Record kinds.
const (
	KindItem        Kind = "item"
	KindObject      Kind = "object"
	KindWidget      Kind = "widget"
	KindSequence    Kind = "sequence"
	KindFrame       Kind = "frame"
	KindFloor       Kind = "floor"
	KindIdentityKit Kind = "identity kit"
	KindGraphic     Kind = "graphic"
)

// Policy selects how a decoder treats opcodes its kind does not define.
type Policy int

const (
	// PolicyFail fails the record with ErrUnknownOpcode.
	PolicyFail Policy = iota

	// PolicySkip logs the opcode and continues with the next byte as an
	// opcode. Operand bytes of the unknown opcode are misread as opcodes, so
	// the resulting record may be wrong; use only to salvage damaged data.
	PolicySkip
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyFail:
		return "fail"
	case PolicySkip:
		return "skip"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParsePolicy parses a policy from its configuration name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "fail":
		return PolicyFail, nil
	case "skip":
		return PolicySkip, nil
	default:
		return 0, fmt.Errorf("unknown opcode policy: %q", name)
	}
}

// FrameLengthFunc returns the display length of an animation frame, or 0
// when it is unknown.
type FrameLengthFunc func(frame int) int

// Decoder decodes records of every kind with one opcode policy.
// A Decoder is safe for concurrent use.
type Decoder struct {
	policy       Policy
	logger       *slog.Logger
	frameLengths FrameLengthFunc
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithPolicy sets the unknown opcode policy (default: PolicyFail).
func WithPolicy(p Policy) DecoderOption {
	return func(d *Decoder) {
		d.policy = p
	}
}

// WithLogger sets the logger used to report skipped opcodes.
func WithLogger(logger *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithFrameLengths sets the lookup used to fill sequence frame delays that
// are stored as zero.
func WithFrameLengths(fn FrameLengthFunc) DecoderOption {
	return func(d *Decoder) {
		d.frameLengths = fn
	}
}

// NewDecoder returns a Decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Policy returns the decoder's unknown opcode policy.
func (d *Decoder) Policy() Policy {
	return d.policy
}

// log returns the logger, falling back to a discard logger if nil.
func (d *Decoder) log() *slog.Logger {
	if d.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.logger
}

// opcodeFunc applies one opcode's operands to a record under construction.
type opcodeFunc[T any] func(r *buffer.Reader, rec *T)

// opcodeTable maps opcodes to their handlers; nil entries are unknown.
type opcodeTable[T any] [256]opcodeFunc[T]

// on registers a handler for one opcode.
func (t *opcodeTable[T]) on(op int, fn opcodeFunc[T]) {
	t[op] = fn
}

// span registers handlers for the contiguous opcodes lo..hi. fn receives the
// slot op-lo, used by opcodes that fill one element of a small array.
func (t *opcodeTable[T]) span(lo, hi int, fn func(slot int) opcodeFunc[T]) {
	for op := lo; op <= hi; op++ {
		t[op] = fn(op - lo)
	}
}

// flag returns a handler that sets a boolean field without reading operands.
func flag[T any](field func(*T) *bool, value bool) opcodeFunc[T] {
	return func(_ *buffer.Reader, rec *T) {
		*field(rec) = value
	}
}

// recordFormat describes how to decode one record kind.
type recordFormat[T any] struct {
	kind     Kind
	defaults func(id int) T
	table    *opcodeTable[T]
	finish   func(d *Decoder, rec *T)
}

// decode builds one record from r, which must be positioned at the record's
// first opcode.
func decode[T any](d *Decoder, rf *recordFormat[T], id int, r *buffer.Reader) (*T, error) {
	rec := rf.defaults(id)
	for {
		start := r.Pos()
		op := r.U8()
		if r.Err() != nil {
			return nil, &RecordError{Kind: rf.kind, ID: id, Opcode: -1, Offset: start, Err: ErrTruncatedRecord}
		}
		if op == 0 {
			break
		}

		fn := rf.table[op]
		if fn == nil {
			if d.policy == PolicySkip {
				d.log().Warn("skipping unknown opcode", "kind", string(rf.kind), "id", id, "opcode", op, "offset", start)
				continue
			}
			return nil, &RecordError{Kind: rf.kind, ID: id, Opcode: op, Offset: start, Err: ErrUnknownOpcode}
		}

		fn(r, &rec)
		if r.Err() != nil {
			return nil, &RecordError{Kind: rf.kind, ID: id, Opcode: op, Offset: start, Err: ErrTruncatedRecord}
		}
	}
	if rf.finish != nil {
		rf.finish(d, &rec)
	}
	return &rec, nil
}

// decodeBytes decodes a record stored alone in data.
func decodeBytes[T any](d *Decoder, rf *recordFormat[T], id int, data []byte) (*T, error) {
	return decode(d, rf, id, buffer.NewReader(data))
}

// readAction reads a menu action string; "hidden" clears the slot.
func readAction(r *buffer.Reader) string {
	s := r.String()
	if equalFold(s, "hidden") {
		return ""
	}
	return s
}

func equalFold(s, ascii string) bool {
	if len(s) != len(ascii) {
		return false
	}
	for i := range len(s) {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != ascii[i] {
			return false
		}
	}
	return true
}

// readOptionalID reads a u16 id where 65535 means none.
func readOptionalID(r *buffer.Reader) int {
	v := r.U16()
	if v == 0xffff {
		return -1
	}
	return v
}

// Recolor replaces one palette color in a model.
type Recolor struct {
	From int
	To   int
}

// readRecolors reads a count followed by (from, to) color pairs.
func readRecolors(r *buffer.Reader) []Recolor {
	n := r.U8()
	out := make([]Recolor, n)
	for i := range out {
		out[i] = Recolor{From: r.U16(), To: r.U16()}
	}
	return out
}
