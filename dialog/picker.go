package dialog

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Delegate receives selection updates from an ImagePicker.
type Delegate interface {
	// SelectionChanged is called after every selection change with the
	// selected assets in selection order, oldest first.
	SelectionChanged(picker *ImagePicker, assets []AssetRef)
}

// DelegateFunc adapts a function to the Delegate interface.
type DelegateFunc func(picker *ImagePicker, assets []AssetRef)

func (f DelegateFunc) SelectionChanged(picker *ImagePicker, assets []AssetRef) {
	f(picker, assets)
}

type nopDelegate struct{}

func (nopDelegate) SelectionChanged(*ImagePicker, []AssetRef) {}

// Config holds the construction parameters of an ImagePicker.
type Config struct {
	Catalog          AssetCatalog
	MaximumSelection int
	MediaType        MediaType
	Delegate         Delegate
}

// ImagePicker is a horizontally scrolling strip of media previews. The
// first selection expands the strip so the focused item is shown at full
// preview height; deselecting the last item shrinks it again.
type ImagePicker struct {
	widget.BaseWidget

	catalog   AssetCatalog
	mediaType MediaType
	delegate  Delegate

	tracker *SelectionTracker
	machine *stateMachine
	engine  *LayoutEngine
	state   LayoutState
	assets  []AssetRef
	loaded  bool

	anim      animator
	scrollGen uint64

	scroll *container.Scroll
	strip  *strip

	// onHeightChanged is set by the hosting sheet.
	onHeightChanged func(height float32)
}

// NewImagePicker validates cfg and returns a picker. Assets are fetched
// the first time the picker is shown, or by calling Reload.
func NewImagePicker(cfg Config) (*ImagePicker, error) {
	if cfg.Catalog == nil {
		return nil, ErrNoCatalog
	}
	tracker, err := NewSelectionTracker(cfg.MaximumSelection)
	if err != nil {
		return nil, err
	}
	delegate := cfg.Delegate
	if delegate == nil {
		delegate = nopDelegate{}
	}

	p := &ImagePicker{
		catalog:   cfg.Catalog,
		mediaType: cfg.MediaType,
		delegate:  delegate,
		tracker:   tracker,
		machine:   newStateMachine(),
		state:     collapsedState(),
		anim:      fyneAnimator{},
	}
	p.engine = NewLayoutEngine(0, p.nativeSize, 1)
	p.strip = newStrip(p)
	p.scroll = container.NewHScroll(p.strip)
	p.scroll.OnScrolled = func(fyne.Position) {
		p.strip.Refresh()
	}
	p.ExtendBaseWidget(p)
	return p, nil
}

// SetDelegate replaces the selection delegate. nil installs a no-op.
func (p *ImagePicker) SetDelegate(d Delegate) {
	if d == nil {
		d = nopDelegate{}
	}
	p.delegate = d
}

// Reload fetches the assets from the catalog and clears the selection.
// A failing catalog leaves the strip empty.
func (p *ImagePicker) Reload() {
	hadSelection := !p.tracker.IsEmpty()
	p.load()
	p.layoutChanged()
	if hadSelection {
		p.notify()
	}
}

func (p *ImagePicker) load() {
	assets, err := p.catalog.FetchAssets(p.mediaType)
	if err != nil {
		fyne.LogError("could not fetch media assets", err)
		assets = nil
	}
	if len(assets) > fetchLimit {
		assets = assets[:fetchLimit]
	}

	p.loaded = true
	p.assets = assets
	p.tracker, _ = NewSelectionTracker(p.tracker.Max())
	p.machine = newStateMachine()
	p.state = collapsedState()
	p.scrollGen++
	p.engine = NewLayoutEngine(len(assets), p.nativeSize, p.engine.scale)
	p.strip.reset()

	if pf, ok := p.catalog.(prefetcher); ok && len(assets) > 0 {
		pf.Prefetch(assets, p.engine.TargetImageSize)
	}

	p.scroll.Offset = fyne.NewPos(0, 0)
}

func (p *ImagePicker) nativeSize(id int) (int, int) {
	if id < 0 || id >= len(p.assets) {
		return 0, 0
	}
	return p.catalog.NativeSize(p.assets[id])
}

func (p *ImagePicker) ensureLoaded() {
	if !p.loaded {
		p.load()
	}
}

// AssetCount is the number of assets shown.
func (p *ImagePicker) AssetCount() int {
	p.ensureLoaded()
	return len(p.assets)
}

// Asset returns the asset at id.
func (p *ImagePicker) Asset(id int) (AssetRef, bool) {
	p.ensureLoaded()
	if id < 0 || id >= len(p.assets) {
		return AssetRef{}, false
	}
	return p.assets[id], true
}

func (p *ImagePicker) MaximumSelection() int {
	return p.tracker.Max()
}

// Mode is the layout mode the selection calls for: Expanded while anything
// is selected, even if the strip is still animating.
func (p *ImagePicker) Mode() LayoutMode {
	return p.machine.mode()
}

// Expanded reports whether the previews are expanded.
func (p *ImagePicker) Expanded() bool {
	return p.Mode() == Expanded
}

// StripHeight is the current height of the strip, following animations.
func (p *ImagePicker) StripHeight() float32 {
	return p.engine.StripHeight(p.state)
}

func (p *ImagePicker) IsSelected(id int) bool {
	return p.tracker.Contains(id)
}

// SelectedIndices returns the selected item indices in selection order.
func (p *ImagePicker) SelectedIndices() []int {
	return p.tracker.Indices()
}

// SelectedAssets returns the selected assets in selection order.
func (p *ImagePicker) SelectedAssets() []AssetRef {
	ids := p.tracker.Indices()
	out := make([]AssetRef, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(p.assets) {
			out = append(out, p.assets[id])
		}
	}
	return out
}

// Toggle selects id, or deselects it when it is already selected.
func (p *ImagePicker) Toggle(id int) {
	if p.tracker.Contains(id) {
		p.Deselect(id)
		return
	}
	p.Select(id)
}

// Select adds id to the selection, evicting the oldest selection when the
// maximum is reached. Selecting a selected item does nothing.
func (p *ImagePicker) Select(id int) {
	p.ensureLoaded()
	if id < 0 || id >= len(p.assets) || p.tracker.Contains(id) {
		return
	}

	evicted, didEvict := p.tracker.Add(id)
	if didEvict {
		p.setCellSelected(evicted, false)
	}
	p.setCellSelected(id, true)

	action := p.machine.selected(id)
	p.notify()
	p.perform(action)
}

// Deselect removes id from the selection.
func (p *ImagePicker) Deselect(id int) {
	if !p.tracker.Remove(id) {
		return
	}
	p.setCellSelected(id, false)

	action := p.machine.deselected(id, p.tracker.Indices())
	p.notify()
	p.perform(action)
}

func (p *ImagePicker) setCellSelected(id int, selected bool) {
	if c := p.strip.cell(id); c != nil {
		c.setSelected(selected)
	}
}

func (p *ImagePicker) notify() {
	p.delegate.SelectionChanged(p, p.SelectedAssets())
}

func (p *ImagePicker) perform(action transitionAction) {
	switch action {
	case actionExpand:
		p.state.Focused = p.machine.focus
		p.state.Mode = Expanded
		p.animateProgress(1, expandDuration*time.Millisecond, fyne.AnimationEaseOut)
	case actionShrink:
		p.state.Focused = p.machine.focus
		p.state.Mode = Collapsed
		p.animateProgress(0, shrinkDuration*time.Millisecond, fyne.AnimationEaseInOut)
	case actionScrollTo:
		p.state.Focused = p.machine.focus
		p.layoutChanged()
		p.scrollToCenter(p.machine.focus)
	}
}

func (p *ImagePicker) animateProgress(to float32, d time.Duration, curve fyne.AnimationCurve) {
	from := p.state.Progress
	p.anim.animate(d, curve, func(t float32) {
		p.state.Progress = lerp32(from, to, t)
		p.layoutChanged()
	}, func() {
		p.state.Progress = to
		p.layoutChanged()

		next := p.machine.animationComplete()
		if next == actionNone && p.machine.state == stateExpanded && p.state.Focused != p.machine.focus {
			// The target moved while expanding.
			next = actionScrollTo
		}
		p.perform(next)
	})
}

// scrollToCenter animates the offset so id is centred in the viewport.
func (p *ImagePicker) scrollToCenter(id int) {
	_, width := p.viewport()
	if width <= 0 {
		return
	}
	from := p.scroll.Offset.X
	to := p.engine.CenterOffset(id, p.state, width)
	if from == to {
		return
	}

	p.scrollGen++
	gen := p.scrollGen
	p.anim.animate(scrollDuration*time.Millisecond, fyne.AnimationEaseOut, func(t float32) {
		if gen != p.scrollGen {
			return
		}
		p.scroll.Offset = fyne.NewPos(lerp32(from, to, t), 0)
		p.scroll.Refresh()
		p.strip.Refresh()
	}, nil)
}

func (p *ImagePicker) viewport() (offset, width float32) {
	if p.scroll == nil {
		return 0, 0
	}
	return p.scroll.Offset.X, p.scroll.Size().Width
}

// layoutChanged pushes the current state to the strip and the host.
func (p *ImagePicker) layoutChanged() {
	p.strip.Refresh()
	p.scroll.Refresh()
	p.Refresh()
	if p.onHeightChanged != nil {
		p.onHeightChanged(p.StripHeight())
	}
}

func (p *ImagePicker) CreateRenderer() fyne.WidgetRenderer {
	p.ensureLoaded()
	return &imagePickerRenderer{p: p}
}

type imagePickerRenderer struct {
	p *ImagePicker
}

func (r *imagePickerRenderer) Layout(size fyne.Size) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(r.p); c != nil {
		r.p.engine.SetScale(c.Scale())
	}
	r.p.scroll.Resize(size)
	r.p.scroll.Move(fyne.NewPos(0, 0))
	r.p.strip.Refresh()
}

func (r *imagePickerRenderer) MinSize() fyne.Size {
	return fyne.NewSize(collapsedSide()+2*previewInset, r.p.StripHeight())
}

func (r *imagePickerRenderer) Refresh() {
	r.Layout(r.p.Size())
}

func (r *imagePickerRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.p.scroll}
}

func (r *imagePickerRenderer) Destroy() {}

var _ MediaPicker = (*ImagePicker)(nil)
