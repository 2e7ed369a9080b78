package config

import "github.com/meigma/gamecache/internal/buffer"

// SequenceFrame is one keyframe of an animation, stored as a loose file in
// the animation index.
type SequenceFrame struct {
	ID         int
	Skeleton   int
	Duration   int
	Transforms []Transform
	Opaque     bool
}

// Transform moves one skeleton group.
type Transform struct {
	Group int
	DX    int
	DY    int
	DZ    int
}

// DefaultSequenceFrame returns a frame with every field at its default.
func DefaultSequenceFrame(id int) SequenceFrame {
	return SequenceFrame{ID: id, Skeleton: -1}
}

var frameFormat = &recordFormat[SequenceFrame]{
	kind:     KindFrame,
	defaults: DefaultSequenceFrame,
	table:    frameOpcodes(),
}

func frameOpcodes() *opcodeTable[SequenceFrame] {
	t := new(opcodeTable[SequenceFrame])
	t.on(1, func(r *buffer.Reader, f *SequenceFrame) { f.Skeleton = r.U16() })
	t.on(2, func(r *buffer.Reader, f *SequenceFrame) { f.Duration = r.U16() })
	t.on(3, func(r *buffer.Reader, f *SequenceFrame) {
		n := r.U8()
		f.Transforms = make([]Transform, n)
		for i := range f.Transforms {
			f.Transforms[i] = Transform{Group: r.U16(), DX: r.I16(), DY: r.I16(), DZ: r.I16()}
		}
	})
	t.on(4, flag(func(f *SequenceFrame) *bool { return &f.Opaque }, true))
	return t
}

// SequenceFrame decodes a frame file.
func (d *Decoder) SequenceFrame(id int, data []byte) (*SequenceFrame, error) {
	return decodeBytes(d, frameFormat, id, data)
}
