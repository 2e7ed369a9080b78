package config

import "github.com/meigma/gamecache/internal/buffer"

// Item is an inventory item definition.
type Item struct {
	ID          int
	Model       int
	Name        string
	Description string

	Zoom      int
	RotationX int
	RotationY int
	RotationZ int
	OffsetX   int
	OffsetY   int

	Stackable bool
	Value     int
	Members   bool

	// Wield models are worn, secondary and tertiary body models; -1 is none.
	MaleWield         [3]int
	MaleWieldOffset   int
	FemaleWield       [3]int
	FemaleWieldOffset int

	// Head models are the dialogue head and hat; -1 is none.
	MaleHead   [2]int
	FemaleHead [2]int

	GroundActions [5]string
	Actions       [5]string
	Recolors      []Recolor

	NoteID       int
	NoteTemplate int

	// StackVariants replace the model once the stack reaches Amount.
	// Unused slots have a zero Amount.
	StackVariants [10]StackVariant

	ScaleX   int
	ScaleY   int
	ScaleZ   int
	Ambient  int
	Contrast int
	Team     int
}

// StackVariant is an alternative item shown for large stacks.
type StackVariant struct {
	ID     int
	Amount int
}

// DefaultItem returns an item with every field at its default.
func DefaultItem(id int) Item {
	return Item{
		ID:           id,
		Model:        -1,
		Zoom:         2000,
		Value:        1,
		MaleWield:    [3]int{-1, -1, -1},
		FemaleWield:  [3]int{-1, -1, -1},
		MaleHead:     [2]int{-1, -1},
		FemaleHead:   [2]int{-1, -1},
		NoteID:       -1,
		NoteTemplate: -1,
		ScaleX:       128,
		ScaleY:       128,
		ScaleZ:       128,
	}
}

// IsNote reports whether the item is the noted form of another item and
// must be derived with ToNote before use.
func (it *Item) IsNote() bool {
	return it.NoteTemplate != -1
}

// ToNote returns the noted form of it. template supplies the note's look and
// base is the item being noted.
func (it *Item) ToNote(template, base *Item) *Item {
	n := *it
	n.Model = template.Model
	n.Zoom = template.Zoom
	n.RotationX = template.RotationX
	n.RotationY = template.RotationY
	n.RotationZ = template.RotationZ
	n.OffsetX = template.OffsetX
	n.OffsetY = template.OffsetY
	n.Recolors = template.Recolors

	n.Name = base.Name
	n.Members = base.Members
	n.Value = base.Value
	n.Stackable = true

	article := "a"
	if len(base.Name) > 0 {
		switch base.Name[0] {
		case 'A', 'E', 'I', 'O', 'U', 'a', 'e', 'i', 'o', 'u':
			article = "an"
		}
	}
	n.Description = "Swap this note at any bank for " + article + " " + base.Name + "."
	return &n
}

var itemFormat = &recordFormat[Item]{
	kind:     KindItem,
	defaults: DefaultItem,
	table:    itemOpcodes(),
}

func itemOpcodes() *opcodeTable[Item] {
	t := new(opcodeTable[Item])
	t.on(1, func(r *buffer.Reader, it *Item) { it.Model = r.U16() })
	t.on(2, func(r *buffer.Reader, it *Item) { it.Name = r.String() })
	t.on(3, func(r *buffer.Reader, it *Item) { it.Description = r.String() })
	t.on(4, func(r *buffer.Reader, it *Item) { it.Zoom = r.U16() })
	t.on(5, func(r *buffer.Reader, it *Item) { it.RotationX = r.U16() })
	t.on(6, func(r *buffer.Reader, it *Item) { it.RotationY = r.U16() })
	t.on(7, func(r *buffer.Reader, it *Item) { it.OffsetX = r.I16() })
	t.on(8, func(r *buffer.Reader, it *Item) { it.OffsetY = r.I16() })
	t.on(10, func(r *buffer.Reader, _ *Item) { r.Skip(2) })
	t.on(11, flag(func(it *Item) *bool { return &it.Stackable }, true))
	t.on(12, func(r *buffer.Reader, it *Item) { it.Value = int(r.I32()) })
	t.on(16, flag(func(it *Item) *bool { return &it.Members }, true))
	t.on(23, func(r *buffer.Reader, it *Item) {
		it.MaleWield[0] = r.U16()
		it.MaleWieldOffset = r.I8()
	})
	t.on(24, func(r *buffer.Reader, it *Item) { it.MaleWield[1] = r.U16() })
	t.on(25, func(r *buffer.Reader, it *Item) {
		it.FemaleWield[0] = r.U16()
		it.FemaleWieldOffset = r.I8()
	})
	t.on(26, func(r *buffer.Reader, it *Item) { it.FemaleWield[1] = r.U16() })
	t.span(30, 34, func(slot int) opcodeFunc[Item] {
		return func(r *buffer.Reader, it *Item) { it.GroundActions[slot] = readAction(r) }
	})
	t.span(35, 39, func(slot int) opcodeFunc[Item] {
		return func(r *buffer.Reader, it *Item) { it.Actions[slot] = readAction(r) }
	})
	t.on(40, func(r *buffer.Reader, it *Item) { it.Recolors = readRecolors(r) })
	t.on(78, func(r *buffer.Reader, it *Item) { it.MaleWield[2] = r.U16() })
	t.on(79, func(r *buffer.Reader, it *Item) { it.FemaleWield[2] = r.U16() })
	t.on(90, func(r *buffer.Reader, it *Item) { it.MaleHead[0] = r.U16() })
	t.on(91, func(r *buffer.Reader, it *Item) { it.FemaleHead[0] = r.U16() })
	t.on(92, func(r *buffer.Reader, it *Item) { it.MaleHead[1] = r.U16() })
	t.on(93, func(r *buffer.Reader, it *Item) { it.FemaleHead[1] = r.U16() })
	t.on(95, func(r *buffer.Reader, it *Item) { it.RotationZ = r.U16() })
	t.on(97, func(r *buffer.Reader, it *Item) { it.NoteID = r.U16() })
	t.on(98, func(r *buffer.Reader, it *Item) { it.NoteTemplate = r.U16() })
	t.span(100, 109, func(slot int) opcodeFunc[Item] {
		return func(r *buffer.Reader, it *Item) {
			it.StackVariants[slot] = StackVariant{ID: r.U16(), Amount: r.U16()}
		}
	})
	t.on(110, func(r *buffer.Reader, it *Item) { it.ScaleX = r.U16() })
	t.on(111, func(r *buffer.Reader, it *Item) { it.ScaleY = r.U16() })
	t.on(112, func(r *buffer.Reader, it *Item) { it.ScaleZ = r.U16() })
	t.on(113, func(r *buffer.Reader, it *Item) { it.Ambient = r.I8() })
	t.on(114, func(r *buffer.Reader, it *Item) { it.Contrast = r.I8() * 5 })
	t.on(115, func(r *buffer.Reader, it *Item) { it.Team = r.U8() })
	return t
}

// Item decodes a single item record.
func (d *Decoder) Item(id int, data []byte) (*Item, error) {
	return decodeBytes(d, itemFormat, id, data)
}

// ItemTable returns the item table stored in obj.dat and obj.idx.
func (d *Decoder) ItemTable(data, index []byte) (*IndexedTable[Item], error) {
	return newIndexedTable(KindItem, data, index, func(id int, r *buffer.Reader) (*Item, error) {
		return decode(d, itemFormat, id, r)
	})
}
