package dialog

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

var (
	// ErrNoCatalog is returned when a picker is created without a catalog.
	ErrNoCatalog = errors.New("no asset catalog configured")
	// ErrNotLocal is returned for catalog locations that are not on disk.
	ErrNotLocal = errors.New("catalog location is not a local folder")
)

var registerExif sync.Once

// DirCatalog is an AssetCatalog backed by the media files in one folder.
// Files are read once per FetchAssets call; the result is not refreshed
// when the folder changes.
type DirCatalog struct {
	dir    fyne.ListableURI
	loader *imageLoader

	// files inspected by the last FetchAssets
	inspected int
}

// NewDirCatalog returns a catalog over the files directly inside dir.
func NewDirCatalog(dir fyne.ListableURI) (*DirCatalog, error) {
	if dir == nil || dir.Scheme() != "file" {
		return nil, ErrNotLocal
	}
	registerExif.Do(func() {
		exif.RegisterParsers(mknote.All...)
	})
	return &DirCatalog{dir: dir}, nil
}

// NewDirCatalogForPath is a convenience wrapper around NewDirCatalog.
func NewDirCatalogForPath(path string) (*DirCatalog, error) {
	lister, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil, fmt.Errorf("open media folder %s: %w", path, err)
	}
	return NewDirCatalog(lister)
}

func (c *DirCatalog) Location() fyne.ListableURI {
	return c.dir
}

func (c *DirCatalog) imageLoader() *imageLoader {
	if c.loader == nil {
		c.loader = getImageLoader()
	}
	return c.loader
}

// FetchAssets lists the folder, keeps media matching mediaType and returns
// the newest fetchLimit of them. Files are inspected newest modification
// first and inspection stops once fetchLimit matches are found, so large
// folders are never sniffed or probed in full.
func (c *DirCatalog) FetchAssets(mediaType MediaType) ([]AssetRef, error) {
	files, err := c.dir.List()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.dir.Path(), err)
	}

	type candidate struct {
		uri     fyne.URI
		modTime time.Time
	}
	var candidates []candidate
	for _, u := range files {
		if u.Scheme() != "file" || isHidden(u) {
			continue
		}
		info, err := os.Stat(u.Path())
		if err != nil || info.IsDir() {
			continue
		}
		candidates = append(candidates, candidate{uri: u, modTime: info.ModTime()})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].modTime.Equal(candidates[j].modTime) {
			return candidates[i].uri.Name() < candidates[j].uri.Name()
		}
		return candidates[i].modTime.After(candidates[j].modTime)
	})

	c.inspected = 0
	var assets []AssetRef
	for _, cand := range candidates {
		if len(assets) >= fetchLimit {
			break
		}
		c.inspected++
		asset, ok := c.inspect(cand.uri)
		if !ok || !mediaType.Matches(asset.MediaType) {
			continue
		}
		assets = append(assets, asset)
	}

	sortNewestFirst(assets)
	return assets, nil
}

func sortNewestFirst(assets []AssetRef) {
	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].Created.Equal(assets[j].Created) {
			return assets[i].URI.Name() < assets[j].URI.Name()
		}
		return assets[i].Created.After(assets[j].Created)
	})
}

// inspect classifies one file and reads its metadata. Files that are not
// images or videos report false.
func (c *DirCatalog) inspect(u fyne.URI) (AssetRef, bool) {
	path := u.Path()
	info, err := os.Stat(path)
	if err != nil {
		return AssetRef{}, false
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return AssetRef{}, false
	}

	asset := AssetRef{
		ID:      path,
		URI:     u,
		Created: info.ModTime(),
		Size:    info.Size(),
	}

	switch {
	case strings.HasPrefix(mime.String(), "image/"):
		asset.MediaType = AssetImage
		asset.PixelWidth, asset.PixelHeight = imageDimensions(path)
		if taken, w, h, ok := readExif(path); ok {
			if !taken.IsZero() {
				asset.Created = taken
			}
			if asset.PixelWidth == 0 && w > 0 && h > 0 {
				asset.PixelWidth, asset.PixelHeight = w, h
			}
		}
	case strings.HasPrefix(mime.String(), "video/"):
		asset.MediaType = AssetVideo
		if v, err := c.imageLoader().probeVideo(path); err == nil {
			asset.PixelWidth, asset.PixelHeight = v.width, v.height
		}
	default:
		return AssetRef{}, false
	}
	return asset, true
}

func imageDimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// readExif returns the capture time and EXIF pixel dimensions, if present.
func readExif(path string) (taken time.Time, width, height int, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, 0, 0, false
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, 0, 0, false
	}

	if t, err := x.DateTime(); err == nil {
		taken = t
	}
	if tag, err := x.Get(exif.PixelXDimension); err == nil {
		width, _ = tag.Int(0)
	}
	if tag, err := x.Get(exif.PixelYDimension); err == nil {
		height, _ = tag.Int(0)
	}
	return taken, width, height, true
}

// RequestImage loads a preview on the loader pool and delivers it on the
// main goroutine.
func (c *DirCatalog) RequestImage(asset AssetRef, target fyne.Size, callback func(image.Image)) {
	if asset.URI == nil {
		callback(nil)
		return
	}
	pt := image.Pt(int(target.Width), int(target.Height))
	c.imageLoader().load(asset.URI.Path(), asset.IsVideo(), pt, func(img image.Image) {
		fyne.Do(func() {
			callback(img)
		})
	})
}

func (c *DirCatalog) NativeSize(asset AssetRef) (int, int) {
	return asset.PixelWidth, asset.PixelHeight
}

// Prefetch warms the memory cache from the disk cache for the given assets.
func (c *DirCatalog) Prefetch(assets []AssetRef, target func(AssetRef) fyne.Size) {
	paths := make([]string, 0, len(assets))
	targets := make([]image.Point, 0, len(assets))
	for _, a := range assets {
		if a.URI == nil {
			continue
		}
		t := target(a)
		paths = append(paths, a.URI.Path())
		targets = append(targets, image.Pt(int(t.Width), int(t.Height)))
	}
	c.imageLoader().prewarm(paths, targets)
}

func isHidden(file fyne.URI) bool {
	if file.Scheme() != "file" {
		return false
	}
	name := filepath.Base(file.Path())
	return name == "" || name[0] == '.'
}
