package config

import "github.com/meigma/gamecache/internal/buffer"

// Graphic is a spot animation (projectile or effect) definition.
type Graphic struct {
	ID       int
	Model    int
	Sequence int
	ScaleXY  int
	ScaleZ   int
	Rotation int
	Ambient  int
	Contrast int

	OriginalColors    [10]int
	ReplacementColors [10]int
}

// DefaultGraphic returns a graphic with every field at its default.
func DefaultGraphic(id int) Graphic {
	return Graphic{
		ID:       id,
		Model:    -1,
		Sequence: -1,
		ScaleXY:  128,
		ScaleZ:   128,
	}
}

var graphicFormat = &recordFormat[Graphic]{
	kind:     KindGraphic,
	defaults: DefaultGraphic,
	table:    graphicOpcodes(),
}

func graphicOpcodes() *opcodeTable[Graphic] {
	t := new(opcodeTable[Graphic])
	t.on(1, func(r *buffer.Reader, g *Graphic) { g.Model = r.U16() })
	t.on(2, func(r *buffer.Reader, g *Graphic) { g.Sequence = r.U16() })
	t.on(4, func(r *buffer.Reader, g *Graphic) { g.ScaleXY = r.U16() })
	t.on(5, func(r *buffer.Reader, g *Graphic) { g.ScaleZ = r.U16() })
	t.on(6, func(r *buffer.Reader, g *Graphic) { g.Rotation = r.U16() })
	t.on(7, func(r *buffer.Reader, g *Graphic) { g.Ambient = r.U8() })
	t.on(8, func(r *buffer.Reader, g *Graphic) { g.Contrast = r.U8() })
	t.span(40, 49, func(slot int) opcodeFunc[Graphic] {
		return func(r *buffer.Reader, g *Graphic) { g.OriginalColors[slot] = r.U16() }
	})
	t.span(50, 59, func(slot int) opcodeFunc[Graphic] {
		return func(r *buffer.Reader, g *Graphic) { g.ReplacementColors[slot] = r.U16() }
	})
	return t
}

// Graphic decodes a single graphic record.
func (d *Decoder) Graphic(id int, data []byte) (*Graphic, error) {
	return decodeBytes(d, graphicFormat, id, data)
}

// GraphicTable returns the graphic table stored in spotanim.dat.
func (d *Decoder) GraphicTable(data []byte) (*SequentialTable[Graphic], error) {
	return newSequentialTable(KindGraphic, data, func(id int, r *buffer.Reader) (*Graphic, error) {
		return decode(d, graphicFormat, id, r)
	})
}
