package dialog

import (
	"errors"
	"fmt"
	"image"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type imageCall struct {
	asset    AssetRef
	target   fyne.Size
	callback func(image.Image)
}

// fakeCatalog serves a fixed asset list and holds image requests until the
// test answers them.
type fakeCatalog struct {
	assets   []AssetRef
	err      error
	requests []imageCall
}

func newFakeCatalog(n int) *fakeCatalog {
	c := &fakeCatalog{}
	for i := 0; i < n; i++ {
		c.assets = append(c.assets, AssetRef{
			ID:          fmt.Sprintf("asset-%d", i),
			URI:         storage.NewFileURI(fmt.Sprintf("/photos/%d.jpg", i)),
			PixelWidth:  1600,
			PixelHeight: 1200,
		})
	}
	return c
}

func (c *fakeCatalog) FetchAssets(t MediaType) ([]AssetRef, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []AssetRef
	for _, a := range c.assets {
		if t.Matches(a.MediaType) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *fakeCatalog) RequestImage(asset AssetRef, target fyne.Size, callback func(image.Image)) {
	c.requests = append(c.requests, imageCall{asset: asset, target: target, callback: callback})
}

func (c *fakeCatalog) NativeSize(asset AssetRef) (int, int) {
	return asset.PixelWidth, asset.PixelHeight
}

// immediateAnimator jumps straight to the end of every animation.
type immediateAnimator struct{}

func (immediateAnimator) animate(_ time.Duration, _ fyne.AnimationCurve, tick func(float32), done func()) {
	tick(1)
	if done != nil {
		done()
	}
}

type recordingDelegate struct {
	calls [][]AssetRef
}

func (d *recordingDelegate) SelectionChanged(_ *ImagePicker, assets []AssetRef) {
	d.calls = append(d.calls, assets)
}

func newTestPicker(t *testing.T, catalog AssetCatalog, max int) (*ImagePicker, *recordingDelegate) {
	t.Helper()
	d := &recordingDelegate{}
	p, err := NewImagePicker(Config{Catalog: catalog, MaximumSelection: max, Delegate: d})
	require.NoError(t, err)
	p.anim = immediateAnimator{}
	return p, d
}

func TestImagePicker_ConfigErrors(t *testing.T) {
	_, err := NewImagePicker(Config{MaximumSelection: 1})
	assert.ErrorIs(t, err, ErrNoCatalog)

	_, err = NewImagePicker(Config{Catalog: newFakeCatalog(1), MaximumSelection: 0})
	assert.ErrorIs(t, err, ErrInvalidMaximumSelection)
}

func TestImagePicker_ExpandsOnFirstSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, d := newTestPicker(t, newFakeCatalog(6), 3)
	assert.Equal(t, Collapsed, p.Mode())
	assert.Equal(t, float32(100), p.StripHeight())

	p.Select(2)
	assert.Equal(t, Expanded, p.Mode())
	assert.True(t, p.Expanded())
	assert.Equal(t, float32(200), p.StripHeight())
	assert.Equal(t, []int{2}, p.SelectedIndices())

	require.Len(t, d.calls, 1)
	assert.Equal(t, "asset-2", d.calls[0][0].ID)
}

func TestImagePicker_RefocusStaysExpanded(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, _ := newTestPicker(t, newFakeCatalog(6), 3)
	p.Select(0)
	p.Select(4)

	assert.Equal(t, Expanded, p.Mode())
	assert.Equal(t, 4, p.state.Focused)
	assert.Equal(t, []int{0, 4}, p.SelectedIndices())
}

func TestImagePicker_ShrinksWhenEmpty(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, d := newTestPicker(t, newFakeCatalog(6), 3)
	p.Select(1)
	p.Select(2)

	p.Deselect(1)
	assert.Equal(t, Expanded, p.Mode())

	p.Toggle(2)
	assert.Equal(t, Collapsed, p.Mode())
	assert.Equal(t, float32(100), p.StripHeight())
	assert.Empty(t, p.SelectedIndices())

	require.Len(t, d.calls, 4)
	assert.Empty(t, d.calls[3])
}

func TestImagePicker_EvictsOldestSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, d := newTestPicker(t, newFakeCatalog(6), 2)
	for _, id := range []int{3, 1, 4} {
		p.Select(id)
	}
	assert.Equal(t, []int{1, 4}, p.SelectedIndices())
	assert.False(t, p.IsSelected(3))

	// the delegate sees every change as it happens
	require.Len(t, d.calls, 3)
	last := d.calls[2]
	require.Len(t, last, 2)
	assert.Equal(t, "asset-1", last[0].ID)
	assert.Equal(t, "asset-4", last[1].ID)

	// selecting a selected item is a no-op
	p.Select(4)
	assert.Len(t, d.calls, 3)
}

func TestImagePicker_EvictionClearsCheckmark(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, _ := newTestPicker(t, newFakeCatalog(6), 1)
	w := test.NewWindow(p)
	defer w.Close()
	w.Resize(fyne.NewSize(600, 240))
	p.strip.update()

	p.Select(0)
	p.Select(1)
	p.strip.update()

	first, second := p.strip.cell(0), p.strip.cell(1)
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.False(t, first.check.selected)
	assert.True(t, second.check.selected)
}

func TestImagePicker_EmptyCatalog(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, d := newTestPicker(t, newFakeCatalog(0), 2)
	assert.Zero(t, p.AssetCount())

	p.Select(0)
	p.Toggle(3)
	assert.Empty(t, p.SelectedIndices())
	assert.Empty(t, d.calls)
	assert.Equal(t, Collapsed, p.Mode())
}

func TestImagePicker_CatalogError(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := newFakeCatalog(3)
	c.err = errors.New("permission denied")
	p, _ := newTestPicker(t, c, 2)
	assert.Zero(t, p.AssetCount())

	c.err = nil
	p.Reload()
	assert.Equal(t, 3, p.AssetCount())
}

func TestImagePicker_FetchLimitAndFilter(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := newFakeCatalog(fetchLimit + 10)
	c.assets[0].MediaType = AssetVideo
	p, err := NewImagePicker(Config{Catalog: c, MaximumSelection: 1, MediaType: MediaTypeVideo})
	require.NoError(t, err)
	assert.Equal(t, 1, p.AssetCount())

	p, _ = newTestPicker(t, c, 1)
	assert.Equal(t, fetchLimit, p.AssetCount())
	asset, ok := p.Asset(0)
	require.True(t, ok)
	assert.Equal(t, "asset-1", asset.ID)
	_, ok = p.Asset(fetchLimit)
	assert.False(t, ok)
}

func TestImagePicker_ReloadClearsSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, _ := newTestPicker(t, newFakeCatalog(4), 2)
	p.Select(1)
	require.Equal(t, Expanded, p.Mode())

	p.Reload()
	assert.Empty(t, p.SelectedIndices())
	assert.Equal(t, Collapsed, p.Mode())
	assert.Equal(t, 2, p.MaximumSelection())
}

// heldAnimator keeps animations pending until the test finishes them.
type heldAnimator struct {
	pending []heldAnimation
}

type heldAnimation struct {
	tick func(float32)
	done func()
}

func (a *heldAnimator) animate(_ time.Duration, _ fyne.AnimationCurve, tick func(float32), done func()) {
	a.pending = append(a.pending, heldAnimation{tick: tick, done: done})
}

// finish completes the oldest pending animation.
func (a *heldAnimator) finish(t *testing.T) {
	t.Helper()
	require.NotEmpty(t, a.pending, "no animation in flight")
	next := a.pending[0]
	a.pending = a.pending[1:]
	next.tick(1)
	if next.done != nil {
		next.done()
	}
}

func newHeldPicker(t *testing.T, n, max int) (*ImagePicker, *heldAnimator) {
	t.Helper()
	p, _ := newTestPicker(t, newFakeCatalog(n), max)
	anim := &heldAnimator{}
	p.anim = anim
	return p, anim
}

func TestImagePicker_SelectDuringExpand(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, anim := newHeldPicker(t, 6, 3)
	p.Select(0)
	p.Select(3)
	require.Len(t, anim.pending, 1)
	assert.Equal(t, 0, p.state.Focused)
	assert.Equal(t, Expanded, p.Mode())

	anim.finish(t)
	assert.Equal(t, 3, p.state.Focused)
	assert.Equal(t, float32(200), p.StripHeight())
	assert.Empty(t, anim.pending)
}

func TestImagePicker_DeselectDuringExpand(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, anim := newHeldPicker(t, 6, 3)
	p.Select(2)
	p.Deselect(2)
	assert.Equal(t, Collapsed, p.Mode())
	require.Len(t, anim.pending, 1)

	// the expansion finishes, then exactly one shrink follows
	anim.finish(t)
	require.Len(t, anim.pending, 1)
	anim.finish(t)
	assert.Empty(t, anim.pending)
	assert.Equal(t, float32(100), p.StripHeight())
	assert.Equal(t, stateCollapsed, p.machine.state)
}

func TestImagePicker_SelectDuringShrink(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, anim := newHeldPicker(t, 6, 3)
	p.Select(0)
	anim.finish(t)
	p.Deselect(0)
	require.Len(t, anim.pending, 1)

	p.Select(1)
	assert.Equal(t, Expanded, p.Mode())
	assert.Equal(t, []int{1}, p.SelectedIndices())

	anim.finish(t)
	require.Len(t, anim.pending, 1)
	anim.finish(t)
	assert.Empty(t, anim.pending)
	assert.Equal(t, 1, p.state.Focused)
	assert.Equal(t, float32(200), p.StripHeight())
}

func TestImagePicker_DeselectFocusedRefocusesNewest(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, _ := newTestPicker(t, newFakeCatalog(6), 3)
	p.Select(1)
	p.Select(4)
	p.Select(2)

	p.Deselect(2)
	assert.Equal(t, Expanded, p.Mode())
	assert.Equal(t, 4, p.state.Focused)

	p.Deselect(1)
	assert.Equal(t, 4, p.state.Focused)
}

func TestImagePicker_ReloadNotifiesClearedSelection(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	p, d := newTestPicker(t, newFakeCatalog(4), 2)
	p.Reload()
	assert.Empty(t, d.calls)

	p.Select(1)
	p.Reload()
	require.Len(t, d.calls, 2)
	assert.Empty(t, d.calls[1])
}

func TestStrip_NoBindingBeforeLayout(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	c := newFakeCatalog(10)
	p, _ := newTestPicker(t, c, 2)
	p.AssetCount()
	p.strip.update()

	assert.Empty(t, c.requests)
	assert.Nil(t, p.strip.cell(0))
}
