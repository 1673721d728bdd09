package dialog

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const videoBadgeSize = 18

// pickerCell renders one asset. Cells are pooled by the strip and rebound
// to different items as the strip scrolls.
type pickerCell struct {
	widget.BaseWidget
	picker MediaPicker

	id    int
	asset AssetRef
	// gen changes on every bind; image completions carrying an older
	// value belong to a previous binding and are dropped.
	gen uint64

	placeholder *canvas.Rectangle
	image       *canvas.Image
	videoBadge  *widget.Icon
	check       *checkmark

	checkCenter fyne.Position
}

func newPickerCell(p MediaPicker) *pickerCell {
	c := &pickerCell{
		picker:      p,
		id:          -1,
		placeholder: canvas.NewRectangle(theme.Color(theme.ColorNameInputBackground)),
		image:       canvas.NewImageFromImage(nil),
		videoBadge:  widget.NewIcon(theme.MediaVideoIcon()),
		check:       newCheckmark(),
	}
	c.placeholder.CornerRadius = theme.InputRadiusSize()
	c.image.FillMode = canvas.ImageFillCover
	c.image.ScaleMode = canvas.ImageScaleFastest
	c.image.Hide()
	c.videoBadge.Hide()
	c.ExtendBaseWidget(c)
	return c
}

// bind attaches the cell to item id and requests its preview.
func (c *pickerCell) bind(id int, asset AssetRef, catalog AssetCatalog, target fyne.Size) {
	if c.id == id && c.asset.ID == asset.ID {
		return
	}

	c.gen++
	gen := c.gen
	c.id = id
	c.asset = asset
	c.image.Image = nil
	c.image.Hide()
	if asset.IsVideo() {
		c.videoBadge.Show()
	} else {
		c.videoBadge.Hide()
	}
	c.Refresh()

	if catalog == nil {
		return
	}
	catalog.RequestImage(asset, target, func(img image.Image) {
		c.applyImage(gen, id, img)
	})
}

// unbind detaches the cell so pending completions are ignored.
func (c *pickerCell) unbind() {
	c.gen++
	c.id = -1
	c.asset = AssetRef{}
	c.image.Image = nil
	c.image.Hide()
	c.videoBadge.Hide()
	c.check.setSelected(false)
}

func (c *pickerCell) applyImage(gen uint64, id int, img image.Image) {
	if gen != c.gen || id != c.id {
		return
	}
	if img == nil {
		// Asset unavailable, keep the placeholder.
		return
	}
	c.image.Image = img
	c.image.Show()
	c.image.Refresh()
}

func (c *pickerCell) setSelected(selected bool) {
	c.check.setSelected(selected)
}

func (c *pickerCell) setCheckmarkCenter(pos fyne.Position) {
	if c.checkCenter == pos {
		return
	}
	c.checkCenter = pos
	c.Refresh()
}

func (c *pickerCell) Tapped(*fyne.PointEvent) {
	if c.id < 0 || c.picker == nil {
		return
	}
	c.picker.Toggle(c.id)
}

func (c *pickerCell) CreateRenderer() fyne.WidgetRenderer {
	return &pickerCellRenderer{cell: c}
}

var _ fyne.Tappable = (*pickerCell)(nil)

type pickerCellRenderer struct {
	cell *pickerCell
}

func (r *pickerCellRenderer) Layout(size fyne.Size) {
	c := r.cell
	c.placeholder.Resize(size)
	c.placeholder.Move(fyne.NewPos(0, 0))
	c.image.Resize(size)
	c.image.Move(fyne.NewPos(0, 0))

	badge := fyne.NewSquareSize(videoBadgeSize)
	c.videoBadge.Resize(badge)
	c.videoBadge.Move(fyne.NewPos(previewInset, size.Height-previewInset-badge.Height))

	check := fyne.NewSquareSize(checkmarkSize)
	c.check.Resize(check)
	c.check.Move(fyne.NewPos(c.checkCenter.X-check.Width/2, c.checkCenter.Y-check.Height/2))
}

func (r *pickerCellRenderer) MinSize() fyne.Size {
	return fyne.NewSquareSize(collapsedSide())
}

func (r *pickerCellRenderer) Refresh() {
	r.Layout(r.cell.Size())
	r.cell.placeholder.Refresh()
	r.cell.image.Refresh()
	r.cell.videoBadge.Refresh()
	r.cell.check.Refresh()
}

func (r *pickerCellRenderer) Objects() []fyne.CanvasObject {
	c := r.cell
	return []fyne.CanvasObject{c.placeholder, c.image, c.videoBadge, c.check}
}

func (r *pickerCellRenderer) Destroy() {}
