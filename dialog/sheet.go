package dialog

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// ActionStyle controls where and how a sheet action is drawn.
type ActionStyle int

const (
	ActionStyleDefault ActionStyle = iota
	// ActionStyleCancel is drawn last and also runs on Escape.
	ActionStyleCancel
)

const (
	actionRowHeight       = 58
	mobileCancelRowHeight = 65
	maxSheetWidth         = 640
)

// SheetAction is one button below the picker strip.
type SheetAction struct {
	Title    string
	Icon     fyne.Resource
	Style    ActionStyle
	OnTapped func()
}

// Sheet hosts an ImagePicker above a list of actions in a modal pop-up and
// grows or shrinks with the picker's strip.
type Sheet struct {
	picker  *ImagePicker
	parent  fyne.Window
	actions []SheetAction

	win     *widget.PopUp
	content *fyne.Container
	onClose func()

	originalOnTypedKey func(*fyne.KeyEvent)
}

// NewSheet wraps picker in a sheet shown over parent.
func NewSheet(picker *ImagePicker, parent fyne.Window, actions ...SheetAction) *Sheet {
	s := &Sheet{
		picker:  picker,
		parent:  parent,
		actions: orderActions(actions),
	}
	picker.onHeightChanged = func(float32) {
		s.relayout()
	}
	return s
}

// ShowImagePicker creates a picker from cfg and shows it in a sheet.
func ShowImagePicker(cfg Config, parent fyne.Window, actions ...SheetAction) (*Sheet, error) {
	p, err := NewImagePicker(cfg)
	if err != nil {
		return nil, err
	}
	s := NewSheet(p, parent, actions...)
	s.Show()
	return s, nil
}

// cancel actions go last, the rest keep their order
func orderActions(actions []SheetAction) []SheetAction {
	out := make([]SheetAction, 0, len(actions))
	var cancel []SheetAction
	for _, a := range actions {
		if a.Style == ActionStyleCancel {
			cancel = append(cancel, a)
			continue
		}
		out = append(out, a)
	}
	return append(out, cancel...)
}

func (s *Sheet) Picker() *ImagePicker {
	return s.picker
}

// SetOnClosed sets a callback run whenever the sheet is dismissed.
func (s *Sheet) SetOnClosed(closed func()) {
	s.onClose = closed
}

// BaseHeight is the height of the action area below the strip.
func (s *Sheet) BaseHeight() float32 {
	var h float32
	for _, a := range s.actions {
		h += s.rowHeight(a)
	}
	return h
}

func (s *Sheet) rowHeight(a SheetAction) float32 {
	if a.Style == ActionStyleCancel && fyne.CurrentDevice().IsMobile() {
		return mobileCancelRowHeight
	}
	return actionRowHeight
}

// Size is the sheet size for the picker's current strip height.
func (s *Sheet) Size() fyne.Size {
	width := float32(maxSheetWidth)
	if s.parent != nil && s.parent.Canvas() != nil {
		if avail := s.parent.Canvas().Size().Width - 32; avail > 0 && avail < width {
			width = avail
		}
	}
	return fyne.NewSize(width, s.picker.StripHeight()+s.BaseHeight())
}

func (s *Sheet) Show() {
	content := s.makeUI()
	s.win = widget.NewModalPopUp(content, s.parent.Canvas())
	s.win.Resize(s.Size())
	s.win.Show()

	s.originalOnTypedKey = s.parent.Canvas().OnTypedKey()
	s.parent.Canvas().SetOnTypedKey(s.typedKeyHook)
}

func (s *Sheet) Hide() {
	if s.parent != nil && s.parent.Canvas() != nil {
		s.parent.Canvas().SetOnTypedKey(s.originalOnTypedKey)
	}
	if s.win != nil {
		s.win.Hide()
	}
	if s.onClose != nil {
		s.onClose()
	}
}

func (s *Sheet) Dismiss() {
	s.Hide()
}

func (s *Sheet) relayout() {
	if s.content != nil {
		s.content.Refresh()
	}
	if s.win != nil {
		s.win.Resize(s.Size())
	}
}

func (s *Sheet) typedKeyHook(ev *fyne.KeyEvent) {
	if s.originalOnTypedKey != nil {
		s.originalOnTypedKey(ev)
	}
	if s.win == nil || ev == nil || ev.Name != fyne.KeyEscape {
		return
	}
	for _, a := range s.actions {
		if a.Style == ActionStyleCancel {
			s.runAction(a)
			return
		}
	}
}

// runAction dismisses the sheet before running the action, like any
// action sheet button.
func (s *Sheet) runAction(a SheetAction) {
	s.Hide()
	if a.OnTapped != nil {
		a.OnTapped()
	}
}

func (s *Sheet) makeUI() fyne.CanvasObject {
	objects := []fyne.CanvasObject{s.picker}
	for _, a := range s.actions {
		action := a
		btn := widget.NewButtonWithIcon(action.Title, action.Icon, func() {
			s.runAction(action)
		})
		if action.Style == ActionStyleCancel {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.LowImportance
		}
		objects = append(objects, btn)
	}
	s.content = container.New(&sheetLayout{sheet: s}, objects...)

	return container.New(&resizeLayout{
		internal: layout.NewStackLayout(),
		onResize: s.relayout,
		externalSize: func() fyne.Size {
			if s.parent == nil || s.parent.Canvas() == nil {
				return fyne.Size{}
			}
			return s.parent.Canvas().Size()
		},
	}, s.content)
}

// sheetLayout stacks the picker strip above fixed height action rows.
type sheetLayout struct {
	sheet *Sheet
}

func (l *sheetLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) == 0 {
		return
	}
	stripH := l.sheet.picker.StripHeight()
	objects[0].Move(fyne.NewPos(0, 0))
	objects[0].Resize(fyne.NewSize(size.Width, stripH))

	y := stripH
	for i, o := range objects[1:] {
		if i >= len(l.sheet.actions) {
			break
		}
		h := l.sheet.rowHeight(l.sheet.actions[i])
		o.Move(fyne.NewPos(0, y))
		o.Resize(fyne.NewSize(size.Width, h))
		y += h
	}
}

func (l *sheetLayout) MinSize([]fyne.CanvasObject) fyne.Size {
	return fyne.NewSize(collapsedSide()*2, l.sheet.picker.StripHeight()+l.sheet.BaseHeight())
}

// resizeLayout wraps another layout and reports real size changes of the
// content or of the parent canvas, e.g. on rotation.
type resizeLayout struct {
	internal fyne.Layout
	onResize func()

	externalSize     func() fyne.Size
	lastSize         fyne.Size
	lastExternalSize fyne.Size
	lastFired        time.Time
	timer            *time.Timer
}

func (r *resizeLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	r.internal.Layout(objects, size)
	if r.onResize != nil {
		internalChanged := abs32(size.Width-r.lastSize.Width) >= 0.5 || abs32(size.Height-r.lastSize.Height) >= 0.5
		if internalChanged {
			r.lastSize = size
		}

		externalChanged := false
		if r.externalSize != nil {
			external := r.externalSize()
			externalChanged = abs32(external.Width-r.lastExternalSize.Width) >= 0.5 || abs32(external.Height-r.lastExternalSize.Height) >= 0.5
			if externalChanged {
				r.lastExternalSize = external
			}
		}

		if !internalChanged && !externalChanged {
			return
		}

		r.scheduleResize()
	}
}

func (r *resizeLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return r.internal.MinSize(objects)
}

// scheduleResize defers the callback out of the layout pass and coalesces
// bursts while the window is being resized.
func (r *resizeLayout) scheduleResize() {
	const minInterval = 60 * time.Millisecond

	if r.onResize == nil {
		return
	}

	now := time.Now()
	elapsed := now.Sub(r.lastFired)
	if elapsed >= minInterval {
		r.lastFired = now
		fyne.Do(r.onResize)
		return
	}

	delay := minInterval - elapsed
	if r.timer == nil {
		r.timer = time.AfterFunc(delay, func() {
			fyne.Do(func() {
				r.timer = nil
				r.lastFired = time.Now()
				if r.onResize != nil {
					r.onResize()
				}
			})
		})
		return
	}
	r.timer.Reset(delay)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
