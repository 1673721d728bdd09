package dialog

import (
	"fmt"
	"strings"
)

// MediaType filters which assets a picker shows.
type MediaType int

const (
	// MediaTypeImage shows photos only
	MediaTypeImage MediaType = iota
	// MediaTypeVideo shows videos only
	MediaTypeVideo
	// MediaTypeImageAndVideo shows both
	MediaTypeImageAndVideo
)

// AssetType is the kind of a single asset.
type AssetType int

const (
	AssetImage AssetType = iota
	AssetVideo
)

// LayoutMode is the visual mode of the whole strip.
type LayoutMode int

const (
	// Collapsed renders every item as a small square
	Collapsed LayoutMode = iota
	// Expanded renders the focused item at full preview height
	Expanded
)

func (m LayoutMode) String() string {
	if m == Expanded {
		return "expanded"
	}
	return "collapsed"
}

const (
	previewHeight         = 100
	expandedPreviewHeight = 200
	previewInset          = 8
	itemSpacing           = 10

	checkmarkSize  = 22
	checkmarkInset = 6

	// fetchLimit caps how many assets a catalog returns.
	fetchLimit = 50

	expandDuration = 400 // ms
	shrinkDuration = 350 // ms
	scrollDuration = 300 // ms

	ffmpegPathKey = "fyne:mediaPickerFFmpegPath"
)

// Matches reports whether an asset of type t passes the filter.
func (m MediaType) Matches(t AssetType) bool {
	switch m {
	case MediaTypeImage:
		return t == AssetImage
	case MediaTypeVideo:
		return t == AssetVideo
	default:
		return t == AssetImage || t == AssetVideo
	}
}

func (m MediaType) String() string {
	switch m {
	case MediaTypeVideo:
		return "video"
	case MediaTypeImageAndVideo:
		return "image+video"
	default:
		return "image"
	}
}

// ParseMediaType accepts "image", "video" and "all" (or "image+video").
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "image", "images", "photo", "photos":
		return MediaTypeImage, nil
	case "video", "videos":
		return MediaTypeVideo, nil
	case "all", "both", "image+video", "imageandvideo":
		return MediaTypeImageAndVideo, nil
	}
	return MediaTypeImage, fmt.Errorf("unknown media type %q", s)
}

// MediaPicker is the interface cells use to talk back to the picker.
type MediaPicker interface {
	Toggle(id int)
	IsSelected(id int) bool
	Mode() LayoutMode
}
