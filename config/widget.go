package config

import "github.com/meigma/gamecache/internal/buffer"

// Widget is an interface component definition.
type Widget struct {
	ID          int
	Parent      int
	Type        int
	ActionType  int
	ContentType int
	Width       int
	Height      int
	Alpha       int
	HoverID     int

	Children []WidgetChild

	Text            string
	ActiveText      string
	Tooltip         string
	TextColor       int32
	ActiveTextColor int32
	Filled          bool
	Centered        bool
	Shadowed        bool
	Font            int

	Sprite       string
	ActiveSprite string

	ModelType int
	ModelID   int
	Zoom      int
	RotationX int
	RotationY int

	ScrollHeight     int
	HiddenUntilHover bool

	Comparisons []ValueComparison
	Scripts     [][]int

	ItemActions     [5]string
	SpellName       string
	SelectedAction  string
	SpellUsage      int
	InventoryWidth  int
	InventoryHeight int
}

// WidgetChild places a child widget relative to its parent.
type WidgetChild struct {
	ID int
	X  int
	Y  int
}

// ValueComparison compares a script result against a constant.
type ValueComparison struct {
	Type  int
	Value int
}

// DefaultWidget returns a widget with every field at its default.
func DefaultWidget(id int) Widget {
	return Widget{
		ID:      id,
		Parent:  -1,
		HoverID: -1,
		ModelID: -1,
	}
}

var widgetFormat = &recordFormat[Widget]{
	kind:     KindWidget,
	defaults: DefaultWidget,
	table:    widgetOpcodes(),
}

func widgetOpcodes() *opcodeTable[Widget] {
	t := new(opcodeTable[Widget])
	t.on(1, func(r *buffer.Reader, w *Widget) { w.Parent = r.U16() })
	t.on(2, func(r *buffer.Reader, w *Widget) { w.Type = r.U8() })
	t.on(3, func(r *buffer.Reader, w *Widget) { w.ActionType = r.U8() })
	t.on(4, func(r *buffer.Reader, w *Widget) { w.ContentType = r.U16() })
	t.on(5, func(r *buffer.Reader, w *Widget) {
		w.Width = r.U16()
		w.Height = r.U16()
	})
	t.on(6, func(r *buffer.Reader, w *Widget) { w.Alpha = r.U8() })
	t.on(7, func(r *buffer.Reader, w *Widget) { w.HoverID = readOptionalID(r) })
	t.on(8, func(r *buffer.Reader, w *Widget) {
		n := r.U16()
		w.Children = make([]WidgetChild, 0, min(n, r.Remaining()/6))
		for range n {
			if r.Err() != nil {
				return
			}
			w.Children = append(w.Children, WidgetChild{ID: r.U16(), X: r.I16(), Y: r.I16()})
		}
	})
	t.on(9, func(r *buffer.Reader, w *Widget) { w.Text = r.String() })
	t.on(10, func(r *buffer.Reader, w *Widget) { w.ActiveText = r.String() })
	t.on(11, func(r *buffer.Reader, w *Widget) { w.Tooltip = r.String() })
	t.on(12, func(r *buffer.Reader, w *Widget) { w.TextColor = r.I32() })
	t.on(13, func(r *buffer.Reader, w *Widget) { w.ActiveTextColor = r.I32() })
	t.on(14, flag(func(w *Widget) *bool { return &w.Filled }, true))
	t.on(15, flag(func(w *Widget) *bool { return &w.Centered }, true))
	t.on(16, flag(func(w *Widget) *bool { return &w.Shadowed }, true))
	t.on(17, func(r *buffer.Reader, w *Widget) { w.Font = r.U8() })
	t.on(18, func(r *buffer.Reader, w *Widget) { w.Sprite = r.String() })
	t.on(19, func(r *buffer.Reader, w *Widget) { w.ActiveSprite = r.String() })
	t.on(20, func(r *buffer.Reader, w *Widget) {
		w.ModelType = r.U8()
		w.ModelID = readOptionalID(r)
	})
	t.on(21, func(r *buffer.Reader, w *Widget) {
		w.Zoom = r.U16()
		w.RotationX = r.U16()
		w.RotationY = r.U16()
	})
	t.on(22, func(r *buffer.Reader, w *Widget) { w.ScrollHeight = r.U16() })
	t.on(23, flag(func(w *Widget) *bool { return &w.HiddenUntilHover }, true))
	t.on(24, func(r *buffer.Reader, w *Widget) {
		n := r.U8()
		w.Comparisons = make([]ValueComparison, n)
		for i := range w.Comparisons {
			w.Comparisons[i] = ValueComparison{Type: r.U8(), Value: r.U16()}
		}
	})
	t.on(25, func(r *buffer.Reader, w *Widget) {
		n := r.U8()
		w.Scripts = make([][]int, n)
		for i := range w.Scripts {
			size := r.U16()
			if r.Err() != nil {
				return
			}
			script := make([]int, 0, min(size, r.Remaining()/2))
			for range size {
				script = append(script, r.U16())
			}
			w.Scripts[i] = script
		}
	})
	t.span(30, 34, func(slot int) opcodeFunc[Widget] {
		return func(r *buffer.Reader, w *Widget) { w.ItemActions[slot] = readAction(r) }
	})
	t.on(35, func(r *buffer.Reader, w *Widget) { w.SpellName = r.String() })
	t.on(36, func(r *buffer.Reader, w *Widget) { w.SelectedAction = r.String() })
	t.on(37, func(r *buffer.Reader, w *Widget) { w.SpellUsage = r.U16() })
	t.on(38, func(r *buffer.Reader, w *Widget) {
		w.InventoryWidth = r.U8()
		w.InventoryHeight = r.U8()
	})
	return t
}

// Widget decodes a single widget record.
func (d *Decoder) Widget(id int, data []byte) (*Widget, error) {
	return decodeBytes(d, widgetFormat, id, data)
}

// WidgetTable returns the widget table stored in the interface archive's
// data file.
func (d *Decoder) WidgetTable(data []byte) (*SequentialTable[Widget], error) {
	return newSequentialTable(KindWidget, data, func(id int, r *buffer.Reader) (*Widget, error) {
		return decode(d, widgetFormat, id, r)
	})
}
