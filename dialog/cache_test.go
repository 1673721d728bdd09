package dialog

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestImageLoader_GenerateCacheKey(t *testing.T) {
	l := &imageLoader{}

	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test.mp4")
	_ = os.WriteFile(filePath, make([]byte, 100*1024), 0644)
	target := image.Pt(245, 184)

	key1, err := l.generateCacheKey(filePath, target)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	key2, err := l.generateCacheKey(filePath, target)
	if err != nil {
		t.Fatalf("Failed to generate key2: %v", err)
	}
	if key1 != key2 {
		t.Errorf("Keys should be identical for same file: %s != %s", key1, key2)
	}

	// A preview rendered for another density is a different entry
	other, _ := l.generateCacheKey(filePath, image.Pt(490, 368))
	if other == key1 {
		t.Error("Key should change with the target size")
	}

	time.Sleep(10 * time.Millisecond)
	now := time.Now()
	_ = os.Chtimes(filePath, now, now)

	key3, err := l.generateCacheKey(filePath, target)
	if err != nil {
		t.Fatalf("Failed to generate key3: %v", err)
	}
	if key3 == key1 {
		t.Error("Key should change when modification time changes")
	}

	f, _ := os.OpenFile(filePath, os.O_WRONLY, 0644)
	f.Write([]byte("change"))
	f.Close()
	_ = os.Chtimes(filePath, now, now)

	key4, err := l.generateCacheKey(filePath, target)
	if err != nil {
		t.Fatalf("Failed to generate key4: %v", err)
	}
	if key4 == key3 {
		t.Error("Key should change when first 32KB content changes")
	}

	if _, err := l.generateCacheKey(filepath.Join(tmpDir, "missing.jpg"), target); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestImageLoader_CleanupCache(t *testing.T) {
	tmpDir := t.TempDir()
	l := &imageLoader{
		cacheDir: tmpDir,
	}

	oldSize := MaxCacheSize
	oldFiles := MaxCacheFiles
	MaxCacheSize = 100
	MaxCacheFiles = 5
	defer func() {
		MaxCacheSize = oldSize
		MaxCacheFiles = oldFiles
	}()

	for i := 0; i < 10; i++ {
		path := filepath.Join(tmpDir, string(rune('a'+i))+".jpg")
		_ = os.WriteFile(path, []byte("fake image data"), 0644)
		mtime := time.Now().Add(time.Duration(i-100) * time.Minute)
		_ = os.Chtimes(path, mtime, mtime)
	}
	// not ours, must survive
	_ = os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("keep"), 0644)

	l.cleanupCache()

	files, _ := os.ReadDir(tmpDir)
	jpgs := 0
	for _, f := range files {
		if filepath.Ext(f.Name()) != ".jpg" {
			continue
		}
		jpgs++
		if f.Name() < "g.jpg" {
			t.Errorf("Cleanup kept an old file: %s", f.Name())
		}
	}
	if jpgs > 4 {
		t.Errorf("Cleanup failed to evict enough files. Got %d, expected <= 4", jpgs)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "notes.txt")); err != nil {
		t.Errorf("Cleanup removed a file it does not own: %v", err)
	}
}
