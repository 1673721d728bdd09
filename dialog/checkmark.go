package dialog

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// checkmark is the round selection badge drawn over a cell.
type checkmark struct {
	widget.BaseWidget
	selected bool

	circle *canvas.Circle
	icon   *canvas.Image
}

func newCheckmark() *checkmark {
	c := &checkmark{
		circle: canvas.NewCircle(color.Transparent),
		icon:   canvas.NewImageFromResource(theme.NewColoredResource(theme.ConfirmIcon(), theme.ColorNameForegroundOnPrimary)),
	}
	c.circle.StrokeColor = color.White
	c.circle.StrokeWidth = 1.5
	c.icon.FillMode = canvas.ImageFillContain
	c.icon.Hide()
	c.ExtendBaseWidget(c)
	return c
}

func (c *checkmark) setSelected(selected bool) {
	if c.selected == selected {
		return
	}
	c.selected = selected
	c.Refresh()
}

func (c *checkmark) CreateRenderer() fyne.WidgetRenderer {
	return &checkmarkRenderer{c: c}
}

type checkmarkRenderer struct {
	c *checkmark
}

func (r *checkmarkRenderer) Layout(size fyne.Size) {
	r.c.circle.Resize(size)
	r.c.circle.Move(fyne.NewPos(0, 0))

	inner := size.Width * 0.7
	r.c.icon.Resize(fyne.NewSquareSize(inner))
	r.c.icon.Move(fyne.NewPos((size.Width-inner)/2, (size.Height-inner)/2))
}

func (r *checkmarkRenderer) MinSize() fyne.Size {
	return fyne.NewSquareSize(checkmarkSize)
}

func (r *checkmarkRenderer) Refresh() {
	if r.c.selected {
		r.c.circle.FillColor = theme.Color(theme.ColorNamePrimary)
		r.c.icon.Show()
	} else {
		r.c.circle.FillColor = color.Transparent
		r.c.icon.Hide()
	}
	r.c.circle.Refresh()
	r.c.icon.Refresh()
}

func (r *checkmarkRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.c.circle, r.c.icon}
}

func (r *checkmarkRenderer) Destroy() {}
