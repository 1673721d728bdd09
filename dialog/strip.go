package dialog

import (
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// strip is the scroll content of an ImagePicker. It only keeps cells for
// the items around the viewport and rebinds pooled cells as the offset
// moves.
type strip struct {
	widget.BaseWidget
	p *ImagePicker

	active  map[int]*pickerCell
	free    []*pickerCell
	objects []fyne.CanvasObject
}

func newStrip(p *ImagePicker) *strip {
	s := &strip{
		p:      p,
		active: make(map[int]*pickerCell),
	}
	s.ExtendBaseWidget(s)
	return s
}

func (s *strip) MinSize() fyne.Size {
	return s.p.engine.ContentSize(s.p.state)
}

func (s *strip) CreateRenderer() fyne.WidgetRenderer {
	return &stripRenderer{s: s}
}

// reset drops every binding, used after the catalog is reloaded.
func (s *strip) reset() {
	for id, c := range s.active {
		c.unbind()
		delete(s.active, id)
		s.free = append(s.free, c)
	}
	s.objects = nil
}

func (s *strip) take() *pickerCell {
	if n := len(s.free); n > 0 {
		c := s.free[n-1]
		s.free = s.free[:n-1]
		return c
	}
	return newPickerCell(s.p)
}

// cell returns the cell currently bound to id, if any.
func (s *strip) cell(id int) *pickerCell {
	return s.active[id]
}

// update binds cells for the visible range and moves them to the current
// geometry. It runs on every layout pass, including animation ticks.
func (s *strip) update() {
	p := s.p
	engine := p.engine
	offset, width := p.viewport()

	// nothing is bound until the first layout gives the viewport a width
	first, last := 0, -1
	if width > 0 {
		first, last = engine.VisibleRange(p.state, offset, width)
	}

	for id, c := range s.active {
		if id < first || id > last {
			c.unbind()
			delete(s.active, id)
			s.free = append(s.free, c)
		}
	}

	engine.ClearVisibleAreas()
	if width > 0 {
		viewport := NewRect(offset, 0, width, engine.StripHeight(p.state))
		frames := engine.Frames(p.state)
		for id := first; id <= last && id < len(frames); id++ {
			engine.UpdateVisibleArea(id, frames[id].Frame.Intersect(viewport))
		}
	}
	frames := engine.Frames(p.state)

	for id := first; id <= last && id < len(frames); id++ {
		c, ok := s.active[id]
		if !ok {
			c = s.take()
			s.active[id] = c
		}
		asset := p.assets[id]
		c.bind(id, asset, p.catalog, engine.TargetImageSize(asset))
		c.setSelected(p.tracker.Contains(id))

		g := frames[id]
		c.Move(g.Frame.Position)
		c.Resize(g.Frame.Size)
		c.setCheckmarkCenter(g.CheckmarkCenter.Subtract(g.Frame.Position))
	}

	ids := make([]int, 0, len(s.active))
	for id := range s.active {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	s.objects = s.objects[:0]
	for _, id := range ids {
		s.objects = append(s.objects, s.active[id])
	}
}

type stripRenderer struct {
	s *strip
}

func (r *stripRenderer) Layout(fyne.Size) {
	r.s.update()
}

func (r *stripRenderer) MinSize() fyne.Size {
	return r.s.MinSize()
}

func (r *stripRenderer) Refresh() {
	r.s.update()
	for _, o := range r.s.objects {
		o.Refresh()
	}
}

func (r *stripRenderer) Objects() []fyne.CanvasObject {
	return r.s.objects
}

func (r *stripRenderer) Destroy() {}
