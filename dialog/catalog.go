package dialog

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
)

// AssetRef identifies one media item and carries its display metadata.
// Values are immutable once returned by a catalog.
type AssetRef struct {
	ID          string
	URI         fyne.URI
	MediaType   AssetType
	PixelWidth  int
	PixelHeight int
	Created     time.Time
	Size        int64
}

// AspectRatio returns width/height, or 1 when the size is unknown.
func (a AssetRef) AspectRatio() float32 {
	if a.PixelWidth <= 0 || a.PixelHeight <= 0 {
		return 1
	}
	return float32(a.PixelWidth) / float32(a.PixelHeight)
}

func (a AssetRef) IsVideo() bool {
	return a.MediaType == AssetVideo
}

// AssetCatalog is the source of media shown by an ImagePicker.
type AssetCatalog interface {
	// FetchAssets returns at most fetchLimit assets matching mediaType,
	// newest first.
	FetchAssets(mediaType MediaType) ([]AssetRef, error)
	// RequestImage loads a preview no larger than target pixels. The
	// callback runs on the main goroutine; a nil image means the asset
	// could not be loaded.
	RequestImage(asset AssetRef, target fyne.Size, callback func(image.Image))
	// NativeSize returns the asset's pixel dimensions.
	NativeSize(asset AssetRef) (width, height int)
}

// prefetcher is implemented by catalogs that can warm their caches ahead
// of cells being bound.
type prefetcher interface {
	Prefetch(assets []AssetRef, target func(AssetRef) fyne.Size)
}
