package config

import "github.com/meigma/gamecache/internal/buffer"

// interleaveEnd terminates a sequence's interleave order.
const interleaveEnd = 9999999

// Sequence is an animation sequence definition.
type Sequence struct {
	ID int

	// Frames, SecondaryFrames and Delays are parallel; a secondary frame of
	// -1 means none.
	Frames          []int
	SecondaryFrames []int
	Delays          []int

	LoopOffset int

	// Interleave lists skeleton groups that other animations may override.
	// The last element is always the 9999999 terminator.
	Interleave []int

	Stretches           bool
	Priority            int
	ShieldOverride      int
	WeaponOverride      int
	MaxLoops            int
	AnimatingPrecedence int
	WalkingPrecedence   int
	ReplayMode          int
}

// DefaultSequence returns a sequence with every field at its default.
func DefaultSequence(id int) Sequence {
	return Sequence{
		ID:                  id,
		LoopOffset:          -1,
		Priority:            5,
		ShieldOverride:      -1,
		WeaponOverride:      -1,
		MaxLoops:            99,
		AnimatingPrecedence: -1,
		WalkingPrecedence:   -1,
		ReplayMode:          2,
	}
}

// FrameCount returns the number of frames.
func (s *Sequence) FrameCount() int {
	return len(s.Frames)
}

// Duration returns how long frame i is displayed, never less than 1.
func (s *Sequence) Duration(i int) int {
	if i < 0 || i >= len(s.Delays) || s.Delays[i] <= 0 {
		return 1
	}
	return s.Delays[i]
}

var sequenceFormat = &recordFormat[Sequence]{
	kind:     KindSequence,
	defaults: DefaultSequence,
	table:    sequenceOpcodes(),
	finish:   finishSequence,
}

func sequenceOpcodes() *opcodeTable[Sequence] {
	t := new(opcodeTable[Sequence])
	t.on(1, func(r *buffer.Reader, s *Sequence) {
		n := r.U8()
		s.Frames = make([]int, n)
		s.SecondaryFrames = make([]int, n)
		s.Delays = make([]int, n)
		for i := range n {
			s.Frames[i] = r.U16()
			s.SecondaryFrames[i] = readOptionalID(r)
			s.Delays[i] = r.U16()
		}
	})
	t.on(2, func(r *buffer.Reader, s *Sequence) { s.LoopOffset = r.U16() })
	t.on(3, func(r *buffer.Reader, s *Sequence) {
		n := r.U8()
		s.Interleave = make([]int, n+1)
		for i := range n {
			s.Interleave[i] = r.U8()
		}
		s.Interleave[n] = interleaveEnd
	})
	t.on(4, flag(func(s *Sequence) *bool { return &s.Stretches }, true))
	t.on(5, func(r *buffer.Reader, s *Sequence) { s.Priority = r.U8() })
	t.on(6, func(r *buffer.Reader, s *Sequence) { s.ShieldOverride = r.U16() })
	t.on(7, func(r *buffer.Reader, s *Sequence) { s.WeaponOverride = r.U16() })
	t.on(8, func(r *buffer.Reader, s *Sequence) { s.MaxLoops = r.U8() })
	t.on(9, func(r *buffer.Reader, s *Sequence) { s.AnimatingPrecedence = r.U8() })
	t.on(10, func(r *buffer.Reader, s *Sequence) { s.WalkingPrecedence = r.U8() })
	t.on(11, func(r *buffer.Reader, s *Sequence) { s.ReplayMode = r.U8() })
	t.on(12, func(r *buffer.Reader, _ *Sequence) { r.Skip(4) })
	return t
}

func finishSequence(d *Decoder, s *Sequence) {
	if len(s.Frames) == 0 {
		s.Frames = []int{-1}
		s.SecondaryFrames = []int{-1}
		s.Delays = []int{-1}
	} else if d.frameLengths != nil {
		for i, delay := range s.Delays {
			if delay == 0 {
				s.Delays[i] = d.frameLengths(s.Frames[i])
			}
		}
	}

	precedence := 0
	if s.Interleave != nil {
		precedence = 2
	}
	if s.AnimatingPrecedence == -1 {
		s.AnimatingPrecedence = precedence
	}
	if s.WalkingPrecedence == -1 {
		s.WalkingPrecedence = precedence
	}
}

// Sequence decodes a single sequence record.
func (d *Decoder) Sequence(id int, data []byte) (*Sequence, error) {
	return decodeBytes(d, sequenceFormat, id, data)
}

// SequenceTable returns the sequence table stored in seq.dat.
func (d *Decoder) SequenceTable(data []byte) (*SequentialTable[Sequence], error) {
	return newSequentialTable(KindSequence, data, func(id int, r *buffer.Reader) (*Sequence, error) {
		return decode(d, sequenceFormat, id, r)
	})
}
