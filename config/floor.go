package config

import "github.com/meigma/gamecache/internal/buffer"

// Floor is an overlay or underlay floor definition.
type Floor struct {
	ID      int
	RGB     int
	Texture int
	Occlude bool
	Name    string

	// Colour components derived from RGB, each in 0..255.
	Hue        int
	Saturation int
	Lightness  int

	// HueMultiplier and BlendHue are used to blend neighbouring tiles.
	HueMultiplier int
	BlendHue      int

	// HSL16 is RGB packed into the renderer's 16-bit palette.
	HSL16 int

	MinimapRGB   int
	MinimapHSL16 int
}

// DefaultFloor returns a floor with every field at its default.
func DefaultFloor(id int) Floor {
	return Floor{
		ID:           id,
		Texture:      -1,
		Occlude:      true,
		MinimapRGB:   -1,
		MinimapHSL16: -1,
	}
}

// HSL holds the colour components computed from an RGB value.
type HSL struct {
	Hue           int
	Saturation    int
	Lightness     int
	HueMultiplier int
	BlendHue      int
}

// ToHSL converts a 24-bit RGB colour into the renderer's HSL components.
func ToHSL(rgb int) HSL {
	r := float64(rgb>>16&0xff) / 256
	g := float64(rgb>>8&0xff) / 256
	b := float64(rgb&0xff) / 256

	lo := min(r, g, b)
	hi := max(r, g, b)

	var h, s float64
	l := (lo + hi) / 2
	if lo != hi {
		if l < 0.5 {
			s = (hi - lo) / (hi + lo)
		} else {
			s = (hi - lo) / (2 - hi - lo)
		}
		switch hi {
		case r:
			h = (g - b) / (hi - lo)
		case g:
			h = 2 + (b-r)/(hi-lo)
		default:
			h = 4 + (r-g)/(hi-lo)
		}
	}
	h /= 6

	out := HSL{
		Hue:        int(h * 256),
		Saturation: clampByte(int(s * 256)),
		Lightness:  clampByte(int(l * 256)),
	}
	if l > 0.5 {
		out.HueMultiplier = int((1 - l) * s * 512)
	} else {
		out.HueMultiplier = int(l * s * 512)
	}
	if out.HueMultiplier < 1 {
		out.HueMultiplier = 1
	}
	out.BlendHue = int(h * float64(out.HueMultiplier))
	return out
}

// PackHSL16 packs hue, saturation and lightness into 16 bits. Saturation is
// reduced for very light colours.
func PackHSL16(hue, saturation, lightness int) int {
	for _, limit := range []int{179, 192, 217, 243} {
		if lightness > limit {
			saturation /= 2
		}
	}
	return (hue/4)<<10 + (saturation/32)<<7 + lightness/2
}

func clampByte(v int) int {
	return max(0, min(255, v))
}

func (f *Floor) setColor(rgb int) {
	c := ToHSL(rgb)
	f.RGB = rgb
	f.Hue = c.Hue
	f.Saturation = c.Saturation
	f.Lightness = c.Lightness
	f.HueMultiplier = c.HueMultiplier
	f.BlendHue = c.BlendHue
	f.HSL16 = PackHSL16(clampByte(c.Hue), c.Saturation, c.Lightness)
}

var floorFormat = &recordFormat[Floor]{
	kind:     KindFloor,
	defaults: DefaultFloor,
	table:    floorOpcodes(),
}

func floorOpcodes() *opcodeTable[Floor] {
	t := new(opcodeTable[Floor])
	t.on(1, func(r *buffer.Reader, f *Floor) { f.setColor(r.U24()) })
	t.on(2, func(r *buffer.Reader, f *Floor) { f.Texture = r.U8() })
	t.on(3, func(*buffer.Reader, *Floor) {})
	t.on(5, flag(func(f *Floor) *bool { return &f.Occlude }, false))
	t.on(6, func(r *buffer.Reader, f *Floor) { f.Name = r.String() })
	t.on(7, func(r *buffer.Reader, f *Floor) {
		f.MinimapRGB = r.U24()
		c := ToHSL(f.MinimapRGB)
		f.MinimapHSL16 = PackHSL16(clampByte(c.Hue), c.Saturation, c.Lightness)
	})
	return t
}

// Floor decodes a single floor record.
func (d *Decoder) Floor(id int, data []byte) (*Floor, error) {
	return decodeBytes(d, floorFormat, id, data)
}

// FloorTable returns the floor table stored in flo.dat.
func (d *Decoder) FloorTable(data []byte) (*SequentialTable[Floor], error) {
	return newSequentialTable(KindFloor, data, func(id int, r *buffer.Reader) (*Floor, error) {
		return decode(d, floorFormat, id, r)
	})
}
