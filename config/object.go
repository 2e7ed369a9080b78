package config

import "github.com/meigma/gamecache/internal/buffer"

// Object is a world object (scenery) definition.
type Object struct {
	ID          int
	Models      []int
	ModelTypes  []int
	Name        string
	Description string

	Width  int
	Length int

	Solid           bool
	Impenetrable    bool
	Interactive     bool
	ContourGround   bool
	NonFlatShaded   bool
	Occludes        bool
	Inverted        bool
	CastsShadow     bool
	ObstructsGround bool
	Hollow          bool

	Animation         int
	DecorDisplacement int
	Ambient           int
	Contrast          int
	Actions           [5]string
	Recolors          []Recolor
	MinimapFunction   int
	MapScene          int
	ScaleX            int
	ScaleY            int
	ScaleZ            int
	Surroundings      int
	TranslateX        int
	TranslateY        int
	TranslateZ        int
	SupportItems      int

	// Varbit and Setting select the value passed to Variant; -1 is unused.
	Varbit   int
	Setting  int
	Children []int

	// interactive holds opcode 19's raw value, -1 when absent.
	interactive int
}

// DefaultObject returns an object with every field at its default.
func DefaultObject(id int) Object {
	return Object{
		ID:                id,
		Width:             1,
		Length:            1,
		Solid:             true,
		Impenetrable:      true,
		CastsShadow:       true,
		Animation:         -1,
		DecorDisplacement: 16,
		MinimapFunction:   -1,
		MapScene:          -1,
		ScaleX:            128,
		ScaleY:            128,
		ScaleZ:            128,
		SupportItems:      -1,
		Varbit:            -1,
		Setting:           -1,
		interactive:       -1,
	}
}

// Variant returns the child object id selected by value, or -1 when value
// selects nothing.
func (o *Object) Variant(value int) int {
	if value < 0 || value >= len(o.Children) {
		return -1
	}
	return o.Children[value]
}

var objectFormat = &recordFormat[Object]{
	kind:     KindObject,
	defaults: DefaultObject,
	table:    objectOpcodes(),
	finish:   finishObject,
}

func objectOpcodes() *opcodeTable[Object] {
	t := new(opcodeTable[Object])
	t.on(1, func(r *buffer.Reader, o *Object) {
		n := r.U8()
		if o.Models != nil {
			// The first model list wins.
			r.Skip(n * 3)
			return
		}
		if n == 0 {
			return
		}
		o.Models = make([]int, n)
		o.ModelTypes = make([]int, n)
		for i := range n {
			o.Models[i] = r.U16()
			o.ModelTypes[i] = r.U8()
		}
	})
	t.on(2, func(r *buffer.Reader, o *Object) { o.Name = r.String() })
	t.on(3, func(r *buffer.Reader, o *Object) { o.Description = r.String() })
	t.on(5, func(r *buffer.Reader, o *Object) {
		n := r.U8()
		if o.Models != nil {
			r.Skip(n * 2)
			return
		}
		if n == 0 {
			return
		}
		o.ModelTypes = nil
		o.Models = make([]int, n)
		for i := range n {
			o.Models[i] = r.U16()
		}
	})
	t.on(14, func(r *buffer.Reader, o *Object) { o.Width = r.U8() })
	t.on(15, func(r *buffer.Reader, o *Object) { o.Length = r.U8() })
	t.on(17, flag(func(o *Object) *bool { return &o.Solid }, false))
	t.on(18, flag(func(o *Object) *bool { return &o.Impenetrable }, false))
	t.on(19, func(r *buffer.Reader, o *Object) {
		o.interactive = r.U8()
		o.Interactive = o.interactive == 1
	})
	t.on(21, flag(func(o *Object) *bool { return &o.ContourGround }, true))
	t.on(22, flag(func(o *Object) *bool { return &o.NonFlatShaded }, true))
	t.on(23, flag(func(o *Object) *bool { return &o.Occludes }, true))
	t.on(24, func(r *buffer.Reader, o *Object) { o.Animation = readOptionalID(r) })
	t.on(28, func(r *buffer.Reader, o *Object) { o.DecorDisplacement = r.U8() })
	t.on(29, func(r *buffer.Reader, o *Object) { o.Ambient = r.I8() })
	t.on(39, func(r *buffer.Reader, o *Object) { o.Contrast = r.I8() * 5 })
	t.span(30, 34, func(slot int) opcodeFunc[Object] {
		return func(r *buffer.Reader, o *Object) { o.Actions[slot] = readAction(r) }
	})
	t.on(40, func(r *buffer.Reader, o *Object) { o.Recolors = readRecolors(r) })
	t.on(60, func(r *buffer.Reader, o *Object) { o.MinimapFunction = r.U16() })
	t.on(62, flag(func(o *Object) *bool { return &o.Inverted }, true))
	t.on(64, flag(func(o *Object) *bool { return &o.CastsShadow }, false))
	t.on(65, func(r *buffer.Reader, o *Object) { o.ScaleX = r.U16() })
	t.on(66, func(r *buffer.Reader, o *Object) { o.ScaleY = r.U16() })
	t.on(67, func(r *buffer.Reader, o *Object) { o.ScaleZ = r.U16() })
	t.on(68, func(r *buffer.Reader, o *Object) { o.MapScene = r.U16() })
	t.on(69, func(r *buffer.Reader, o *Object) { o.Surroundings = r.U8() })
	t.on(70, func(r *buffer.Reader, o *Object) { o.TranslateX = r.I16() })
	t.on(71, func(r *buffer.Reader, o *Object) { o.TranslateY = r.I16() })
	t.on(72, func(r *buffer.Reader, o *Object) { o.TranslateZ = r.I16() })
	t.on(73, flag(func(o *Object) *bool { return &o.ObstructsGround }, true))
	t.on(74, flag(func(o *Object) *bool { return &o.Hollow }, true))
	t.on(75, func(r *buffer.Reader, o *Object) { o.SupportItems = r.U8() })
	t.on(77, func(r *buffer.Reader, o *Object) {
		o.Varbit = readOptionalID(r)
		o.Setting = readOptionalID(r)
		n := r.U8()
		o.Children = make([]int, n+1)
		for i := range o.Children {
			o.Children[i] = readOptionalID(r)
		}
	})
	return t
}

func finishObject(_ *Decoder, o *Object) {
	if o.interactive == -1 {
		o.Interactive = len(o.Models) > 0 && (o.ModelTypes == nil || o.ModelTypes[0] == 10)
		for _, a := range o.Actions {
			if a != "" {
				o.Interactive = true
				break
			}
		}
	}
	if o.Hollow {
		o.Solid = false
		o.Impenetrable = false
	}
	if o.SupportItems == -1 {
		o.SupportItems = 0
		if o.Solid {
			o.SupportItems = 1
		}
	}
}

// Object decodes a single object record.
func (d *Decoder) Object(id int, data []byte) (*Object, error) {
	return decodeBytes(d, objectFormat, id, data)
}

// ObjectTable returns the object table stored in loc.dat and loc.idx.
func (d *Decoder) ObjectTable(data, index []byte) (*IndexedTable[Object], error) {
	return newIndexedTable(KindObject, data, index, func(id int, r *buffer.Reader) (*Object, error) {
		return decode(d, objectFormat, id, r)
	})
}
