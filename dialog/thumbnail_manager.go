package dialog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type imageRequest struct {
	path     string
	video    bool
	target   image.Point
	callback func(image.Image)
}

// imageLoader decodes and scales previews on a small worker pool, with a
// memory LRU in front of an on-disk JPEG cache.
type imageLoader struct {
	cache      *lru.Cache[string, image.Image]
	requests   []imageRequest
	reqLock    sync.Mutex
	reqCond    *sync.Cond
	ffmpegPath string
	cacheDir   string
}

var (
	MaxCacheSize  int64 = 500 * 1024 * 1024 // 500MB
	MaxCacheFiles int   = 10000

	// MaxMemoryThumbnails bounds the in-memory preview cache.
	MaxMemoryThumbnails = 2 * fetchLimit
)

const maxPendingRequests = 100

var (
	loaderInstance *imageLoader
	loaderOnce     sync.Once
)

func getImageLoader() *imageLoader {
	loaderOnce.Do(func() {
		ffmpeg := "ffmpeg"
		if app := fyne.CurrentApp(); app != nil {
			if pref := app.Preferences().String(ffmpegPathKey); pref != "" {
				ffmpeg = pref
			}
		}
		loaderInstance = newImageLoader(ffmpeg, "")

		if userCache, err := os.UserCacheDir(); err == nil {
			loaderInstance.cacheDir = filepath.Join(userCache, "xmediapicker")
			if err := os.MkdirAll(loaderInstance.cacheDir, 0o755); err != nil {
				fyne.LogError("could not create thumbnail cache", err)
				loaderInstance.cacheDir = ""
			} else {
				go loaderInstance.cleanupCache()
			}
		}

		for i := 0; i < 4; i++ {
			go loaderInstance.worker()
		}
	})
	return loaderInstance
}

func newImageLoader(ffmpegPath, cacheDir string) *imageLoader {
	cache, _ := lru.New[string, image.Image](MaxMemoryThumbnails)
	l := &imageLoader{
		cache:      cache,
		requests:   make([]imageRequest, 0, maxPendingRequests),
		ffmpegPath: ffmpegPath,
		cacheDir:   cacheDir,
	}
	l.reqCond = sync.NewCond(&l.reqLock)
	return l
}

// SetFFmpegPath sets the ffmpeg binary used for video previews and probing
// and remembers it in the app preferences.
func SetFFmpegPath(path string) {
	l := getImageLoader()
	l.reqLock.Lock()
	l.ffmpegPath = path
	l.reqLock.Unlock()
	if app := fyne.CurrentApp(); app != nil {
		app.Preferences().SetString(ffmpegPathKey, path)
	}
}

func (l *imageLoader) ffmpeg() string {
	l.reqLock.Lock()
	defer l.reqLock.Unlock()
	return l.ffmpegPath
}

func memoryKey(path string, target image.Point) string {
	return fmt.Sprintf("%s@%dx%d", path, target.X, target.Y)
}

// loadMemoryOnly returns a cached preview or nil.
func (l *imageLoader) loadMemoryOnly(path string, target image.Point) image.Image {
	if img, ok := l.cache.Get(memoryKey(path, target)); ok {
		return img
	}
	return nil
}

func (l *imageLoader) load(path string, video bool, target image.Point, callback func(image.Image)) {
	if img := l.loadMemoryOnly(path, target); img != nil {
		callback(img)
		return
	}

	if img := l.loadDisk(path, target); img != nil {
		callback(img)
		return
	}

	// LIFO queue, oldest request dropped when full. A dropped request
	// reports nil so the cell falls back to its placeholder.
	var dropped *imageRequest
	l.reqLock.Lock()
	if len(l.requests) >= maxPendingRequests {
		d := l.requests[0]
		dropped = &d
		l.requests = l.requests[1:]
	}
	l.requests = append(l.requests, imageRequest{path: path, video: video, target: target, callback: callback})
	l.reqCond.Signal()
	l.reqLock.Unlock()

	if dropped != nil {
		dropped.callback(nil)
	}
}

func (l *imageLoader) loadDisk(path string, target image.Point) image.Image {
	if l.cacheDir == "" {
		return nil
	}
	key, err := l.generateCacheKey(path, target)
	if err != nil {
		return nil
	}
	cachePath := filepath.Join(l.cacheDir, key+".jpg")
	if _, err := os.Stat(cachePath); err != nil {
		return nil
	}
	img, err := loadImage(cachePath)
	if err != nil {
		return nil
	}
	l.cache.Add(memoryKey(path, target), img)
	return img
}

// prewarm pulls disk cached previews into memory in the background.
func (l *imageLoader) prewarm(paths []string, targets []image.Point) {
	if l.cacheDir == "" {
		return
	}

	go func() {
		for i, path := range paths {
			if l.loadMemoryOnly(path, targets[i]) != nil {
				continue
			}
			l.loadDisk(path, targets[i])
			// Small sleep to avoid I/O spikes
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func (l *imageLoader) worker() {
	for {
		l.reqLock.Lock()
		for len(l.requests) == 0 {
			l.reqCond.Wait()
		}
		lastIdx := len(l.requests) - 1
		req := l.requests[lastIdx]
		l.requests = l.requests[:lastIdx]
		l.reqLock.Unlock()

		req.callback(l.render(req))
	}
}

func (l *imageLoader) render(req imageRequest) image.Image {
	if img := l.loadMemoryOnly(req.path, req.target); img != nil {
		return img
	}

	var src image.Image
	var err error
	if req.video {
		src, err = l.generateVideoThumbnail(req.path)
	} else {
		src, err = loadImage(req.path)
	}
	if err != nil || src == nil {
		if err != nil {
			fyne.LogError("could not load preview for "+req.path, err)
		}
		return nil
	}

	dst := scaleToFill(src, req.target)
	if dst == nil {
		return nil
	}
	l.cache.Add(memoryKey(req.path, req.target), dst)

	if l.cacheDir != "" {
		if key, err := l.generateCacheKey(req.path, req.target); err == nil {
			cachePath := filepath.Join(l.cacheDir, key+".jpg")
			if f, err := os.Create(cachePath); err == nil {
				_ = jpeg.Encode(f, dst, &jpeg.Options{Quality: 85})
				f.Close()
			}
		}
	}
	return dst
}

// scaleToFill scales src to cover target, cropping the overflow around the
// centre. Sources smaller than target are not upscaled.
func scaleToFill(src image.Image, target image.Point) image.Image {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 || target.X <= 0 || target.Y <= 0 {
		return nil
	}

	scale := max(float64(target.X)/float64(srcW), float64(target.Y)/float64(srcH))
	dstW, dstH := target.X, target.Y
	if scale > 1 {
		dstW = int(float64(dstW) / scale)
		dstH = int(float64(dstH) / scale)
		scale = 1
	}
	dstW, dstH = max(dstW, 1), max(dstH, 1)

	cropW := int(float64(dstW) / scale)
	cropH := int(float64(dstH) / scale)
	cropW, cropH = min(cropW, srcW), min(cropH, srcH)
	x0 := srcBounds.Min.X + (srcW-cropW)/2
	y0 := srcBounds.Min.Y + (srcH-cropH)/2
	crop := image.Rect(x0, y0, x0+cropW, y0+cropH)

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)
	return dst
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func (l *imageLoader) generateVideoThumbnail(path string) (image.Image, error) {
	info, err := l.probeVideo(path)
	duration := info.duration
	if err != nil || duration <= 0 {
		duration = 1 * time.Second
	}

	seekTime := duration / 2
	seekStr := fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(seekTime.Hours()),
		int(seekTime.Minutes())%60,
		int(seekTime.Seconds())%60,
		seekTime.Milliseconds()%1000)

	// Input seeking (-ss before -i) is less accurate but much faster.
	cmd := exec.Command(l.ffmpeg(), "-ss", seekStr, "-i", path, "-vframes", "1", "-f", "image2", "-strict", "unofficial", "-")
	applyHiddenWindow(cmd)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg frame grab: %w", err)
	}

	img, _, err := image.Decode(&buf)
	return img, err
}

type videoInfo struct {
	duration      time.Duration
	width, height int
}

var (
	durationRe = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)
	streamRe   = regexp.MustCompile(`Stream #.*Video: .*?(\d{2,5})x(\d{2,5})`)
)

// probeVideo reads duration and frame size from ffmpeg's banner.
func (l *imageLoader) probeVideo(path string) (videoInfo, error) {
	cmd := exec.Command(l.ffmpeg(), "-i", path)
	applyHiddenWindow(cmd)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Fails without an output file, but the banner is still printed.
	_ = cmd.Run()
	return parseFFmpegBanner(stderr.String())
}

func parseFFmpegBanner(out string) (videoInfo, error) {
	var info videoInfo
	if m := streamRe.FindStringSubmatch(out); len(m) == 3 {
		info.width, _ = strconv.Atoi(m[1])
		info.height, _ = strconv.Atoi(m[2])
	}

	matches := durationRe.FindStringSubmatch(out)
	if len(matches) < 5 {
		return info, fmt.Errorf("could not find duration in output")
	}

	hours, _ := strconv.Atoi(matches[1])
	minutes, _ := strconv.Atoi(matches[2])
	seconds, _ := strconv.Atoi(matches[3])
	centiseconds, _ := strconv.Atoi(matches[4])

	info.duration = time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(centiseconds*10)*time.Millisecond
	return info, nil
}

func (l *imageLoader) generateCacheKey(path string, target image.Point) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(absPath))
	h.Write([]byte(info.ModTime().String()))
	h.Write([]byte(fmt.Sprintf("%d|%dx%d", info.Size(), target.X, target.Y)))

	// Partial content (32KB)
	f, err := os.Open(absPath)
	if err == nil {
		defer f.Close()
		buf := make([]byte, 32*1024)
		n, _ := f.Read(buf)
		h.Write(buf[:n])
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func (l *imageLoader) cleanupCache() {
	if l.cacheDir == "" {
		return
	}

	files, err := os.ReadDir(l.cacheDir)
	if err != nil {
		return
	}

	type fileInfo struct {
		name string
		size int64
		time time.Time
	}

	var cachedFiles []fileInfo
	var totalSize int64

	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".jpg" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		cachedFiles = append(cachedFiles, fileInfo{
			name: f.Name(),
			size: info.Size(),
			time: info.ModTime(),
		})
		totalSize += info.Size()
	}

	if totalSize <= MaxCacheSize && len(cachedFiles) <= MaxCacheFiles {
		return
	}

	// Oldest first
	sort.Slice(cachedFiles, func(i, j int) bool {
		return cachedFiles[i].time.Before(cachedFiles[j].time)
	})

	for _, f := range cachedFiles {
		if totalSize <= int64(float64(MaxCacheSize)*0.8) && len(cachedFiles) <= int(float64(MaxCacheFiles)*0.8) {
			break
		}
		_ = os.Remove(filepath.Join(l.cacheDir, f.name))
		totalSize -= f.size
		cachedFiles = cachedFiles[1:]
	}
}
