package config

import "github.com/meigma/gamecache/internal/buffer"

// IdentityKit is a selectable player body part.
type IdentityKit struct {
	ID            int
	BodyPart      int
	Models        []int
	NonSelectable bool

	OriginalColors    [10]int
	ReplacementColors [10]int

	// HeadModels are used for dialogue heads; -1 is none.
	HeadModels [10]int
}

// DefaultIdentityKit returns an identity kit with every field at its default.
func DefaultIdentityKit(id int) IdentityKit {
	k := IdentityKit{ID: id, BodyPart: -1}
	for i := range k.HeadModels {
		k.HeadModels[i] = -1
	}
	return k
}

var identityKitFormat = &recordFormat[IdentityKit]{
	kind:     KindIdentityKit,
	defaults: DefaultIdentityKit,
	table:    identityKitOpcodes(),
}

func identityKitOpcodes() *opcodeTable[IdentityKit] {
	t := new(opcodeTable[IdentityKit])
	t.on(1, func(r *buffer.Reader, k *IdentityKit) { k.BodyPart = r.U8() })
	t.on(2, func(r *buffer.Reader, k *IdentityKit) {
		n := r.U8()
		k.Models = make([]int, n)
		for i := range k.Models {
			k.Models[i] = r.U16()
		}
	})
	t.on(3, flag(func(k *IdentityKit) *bool { return &k.NonSelectable }, true))
	t.span(40, 49, func(slot int) opcodeFunc[IdentityKit] {
		return func(r *buffer.Reader, k *IdentityKit) { k.OriginalColors[slot] = r.U16() }
	})
	t.span(50, 59, func(slot int) opcodeFunc[IdentityKit] {
		return func(r *buffer.Reader, k *IdentityKit) { k.ReplacementColors[slot] = r.U16() }
	})
	t.span(60, 69, func(slot int) opcodeFunc[IdentityKit] {
		return func(r *buffer.Reader, k *IdentityKit) { k.HeadModels[slot] = r.U16() }
	})
	return t
}

// IdentityKit decodes a single identity kit record.
func (d *Decoder) IdentityKit(id int, data []byte) (*IdentityKit, error) {
	return decodeBytes(d, identityKitFormat, id, data)
}

// IdentityKitTable returns the identity kit table stored in idk.dat.
func (d *Decoder) IdentityKitTable(data []byte) (*SequentialTable[IdentityKit], error) {
	return newSequentialTable(KindIdentityKit, data, func(id int, r *buffer.Reader) (*IdentityKit, error) {
		return decode(d, identityKitFormat, id, r)
	})
}
