package dialog

import (
	"math"

	"fyne.io/fyne/v2"
)

// Rect is an axis aligned rectangle in strip content coordinates.
type Rect struct {
	Position fyne.Position
	Size     fyne.Size
}

func NewRect(x, y, w, h float32) Rect {
	return Rect{Position: fyne.NewPos(x, y), Size: fyne.NewSize(w, h)}
}

func (r Rect) MinX() float32 { return r.Position.X }
func (r Rect) MinY() float32 { return r.Position.Y }
func (r Rect) MaxX() float32 { return r.Position.X + r.Size.Width }
func (r Rect) MaxY() float32 { return r.Position.Y + r.Size.Height }
func (r Rect) MidX() float32 { return r.Position.X + r.Size.Width/2 }

func (r Rect) IsEmpty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

// Intersect returns the overlap of r and o, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max32(r.MinX(), o.MinX())
	y1 := max32(r.MinY(), o.MinY())
	x2 := min32(r.MaxX(), o.MaxX())
	y2 := min32(r.MaxY(), o.MaxY())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return NewRect(x1, y1, x2-x1, y2-y1)
}

// ItemGeometry is the derived placement of one item.
type ItemGeometry struct {
	Frame           Rect
	CheckmarkCenter fyne.Position
}

// LayoutState is everything besides asset metadata that geometry depends on.
// Progress runs from 0 (collapsed) to 1 (expanded) and is only applied to
// the Focused item and the strip height.
type LayoutState struct {
	Mode     LayoutMode
	Focused  int
	Progress float32
}

func collapsedState() LayoutState {
	return LayoutState{Mode: Collapsed, Focused: -1}
}

// LayoutEngine computes strip geometry. Apart from the optional visible
// area hints it holds no state; every method is a function of its inputs.
type LayoutEngine struct {
	count   int
	native  func(id int) (width, height int)
	scale   float32
	visible map[int]Rect
}

// NewLayoutEngine returns an engine for count items whose pixel sizes are
// reported by native. scale is the device pixel density.
func NewLayoutEngine(count int, native func(id int) (int, int), scale float32) *LayoutEngine {
	if scale <= 0 {
		scale = 1
	}
	return &LayoutEngine{
		count:   count,
		native:  native,
		scale:   scale,
		visible: make(map[int]Rect),
	}
}

func (e *LayoutEngine) Count() int { return e.count }

func (e *LayoutEngine) SetScale(scale float32) {
	if scale > 0 {
		e.scale = scale
	}
}

func collapsedSide() float32 {
	return previewHeight - 2*previewInset
}

func expandedImageHeight() float32 {
	return expandedPreviewHeight - 2*previewInset
}

// StripHeight is the height of the whole strip at the given state.
func (e *LayoutEngine) StripHeight(st LayoutState) float32 {
	return lerp32(previewHeight, expandedPreviewHeight, clampProgress(st.Progress))
}

// ExpandedSize is the size of id when it is the fully expanded focus item:
// full preview height, width following the native aspect ratio but never
// wider than the native pixels at the current density.
func (e *LayoutEngine) ExpandedSize(id int) fyne.Size {
	side := collapsedSide()
	if e.native == nil {
		return fyne.NewSquareSize(side)
	}
	w, h := e.native(id)
	if w <= 0 || h <= 0 {
		return fyne.NewSquareSize(side)
	}

	height := expandedImageHeight()
	width := float32(float64(w) * (float64(height) / float64(h)))
	if limit := float32(w) / e.scale; width > limit {
		width = limit
	}
	return fyne.NewSize(width, height)
}

// ItemSize returns the size of id for st.
func (e *LayoutEngine) ItemSize(id int, st LayoutState) fyne.Size {
	small := fyne.NewSquareSize(collapsedSide())
	p := clampProgress(st.Progress)
	if id != st.Focused || p == 0 {
		return small
	}
	big := e.ExpandedSize(id)
	return fyne.NewSize(lerp32(small.Width, big.Width, p), lerp32(small.Height, big.Height, p))
}

func (e *LayoutEngine) itemY(size fyne.Size, st LayoutState) float32 {
	avail := e.StripHeight(st) - 2*previewInset
	return previewInset + (avail-size.Height)/2
}

// Frames returns the geometry of every item, left to right.
func (e *LayoutEngine) Frames(st LayoutState) []ItemGeometry {
	out := make([]ItemGeometry, e.count)
	x := float32(previewInset)
	for id := 0; id < e.count; id++ {
		size := e.ItemSize(id, st)
		frame := Rect{Position: fyne.NewPos(x, e.itemY(size, st)), Size: size}
		out[id] = ItemGeometry{Frame: frame, CheckmarkCenter: e.checkmarkCenter(id, frame)}
		x += size.Width + itemSpacing
	}
	return out
}

// Geometry returns the geometry of a single item.
func (e *LayoutEngine) Geometry(id int, st LayoutState) ItemGeometry {
	if id < 0 || id >= e.count {
		return ItemGeometry{}
	}
	x := float32(previewInset)
	for i := 0; i < id; i++ {
		x += e.ItemSize(i, st).Width + itemSpacing
	}
	size := e.ItemSize(id, st)
	frame := Rect{Position: fyne.NewPos(x, e.itemY(size, st)), Size: size}
	return ItemGeometry{Frame: frame, CheckmarkCenter: e.checkmarkCenter(id, frame)}
}

// ContentSize is the scrollable size of the strip including insets.
func (e *LayoutEngine) ContentSize(st LayoutState) fyne.Size {
	height := e.StripHeight(st)
	if e.count == 0 {
		return fyne.NewSize(2*previewInset, height)
	}
	width := float32(2 * previewInset)
	for id := 0; id < e.count; id++ {
		width += e.ItemSize(id, st).Width
	}
	width += float32(e.count-1) * itemSpacing
	return fyne.NewSize(width, height)
}

// CenterOffset returns the horizontal scroll offset that centres id in a
// viewport of the given width, clamped to the content bounds.
func (e *LayoutEngine) CenterOffset(id int, st LayoutState, viewportWidth float32) float32 {
	g := e.Geometry(id, st)
	offset := g.Frame.MidX() - viewportWidth/2
	maxOffset := e.ContentSize(st).Width - viewportWidth
	if maxOffset < 0 {
		maxOffset = 0
	}
	return clamp32(offset, 0, maxOffset)
}

// VisibleRange returns the first and last ids whose frames intersect the
// viewport, widened by one item each side. last < first when nothing is
// visible.
func (e *LayoutEngine) VisibleRange(st LayoutState, offset, viewportWidth float32) (first, last int) {
	first, last = -1, -2
	x := float32(previewInset)
	for id := 0; id < e.count; id++ {
		w := e.ItemSize(id, st).Width
		if x+w >= offset && x <= offset+viewportWidth {
			if first < 0 {
				first = id
			}
			last = id
		}
		x += w + itemSpacing
	}
	if first < 0 {
		return 0, -1
	}
	if first > 0 {
		first--
	}
	if last < e.count-1 {
		last++
	}
	return first, last
}

// UpdateVisibleArea records the on-screen part of id's frame (content
// coordinates) so its checkmark can stay inside the visible part.
func (e *LayoutEngine) UpdateVisibleArea(id int, visible Rect) {
	if visible.IsEmpty() {
		delete(e.visible, id)
		return
	}
	e.visible[id] = visible
}

func (e *LayoutEngine) ClearVisibleAreas() {
	clear(e.visible)
}

func (e *LayoutEngine) checkmarkCenter(id int, frame Rect) fyne.Position {
	const off = checkmarkInset + checkmarkSize/2
	center := fyne.NewPos(frame.MinX()+off, frame.MinY()+off)

	vis, ok := e.visible[id]
	if !ok || frame.Size.Width <= 2*off {
		return center
	}
	area := frame.Intersect(vis)
	if area.IsEmpty() {
		return center
	}
	center.X = max32(center.X, area.MinX()+off)
	center.X = min32(center.X, frame.MaxX()-off)
	return center
}

// TargetImageSize is the pixel size to request from the catalog so an
// asset looks sharp at its expanded size.
func (e *LayoutEngine) TargetImageSize(asset AssetRef) fyne.Size {
	height := expandedImageHeight()
	width := float32(math.Floor(float64(asset.AspectRatio() * height)))
	return fyne.NewSize(width*e.scale, height*e.scale)
}

func lerp32(a, b, t float32) float32 {
	return a + (b-a)*t
}

func clampProgress(p float32) float32 {
	return clamp32(p, 0, 1)
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
