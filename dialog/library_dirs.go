package dialog

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"fyne.io/fyne/v2"
	fynedialog "fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"github.com/FyshOS/fancyfs"
)

// DefaultLibraryDir is the folder a DirCatalog reads when the host does not
// configure one: the user's pictures folder, or videos for video only
// pickers. It falls back to the home directory.
func DefaultLibraryDir(t MediaType) fyne.ListableURI {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		fyne.LogError("could not find home directory", err)
		return nil
	}
	homeURI := storage.NewFileURI(homeDir)

	if uri, err := getFavoriteLocation(homeURI, libraryFolderName(t)); err == nil {
		if l, err := storage.ListerForURI(uri); err == nil {
			return l
		}
	}

	l, err := storage.ListerForURI(homeURI)
	if err != nil {
		fyne.LogError("could not list home directory", err)
		return nil
	}
	return l
}

func libraryFolderName(t MediaType) string {
	if t != MediaTypeVideo {
		return "Pictures"
	}
	if runtime.GOOS == "darwin" {
		return "Movies"
	}
	return "Videos"
}

func getFavoriteLocation(homeURI fyne.URI, name string) (fyne.URI, error) {
	if runtime.GOOS != "linux" && runtime.GOOS != "openbsd" && runtime.GOOS != "freebsd" && runtime.GOOS != "netbsd" {
		return storage.Child(homeURI, name)
	}

	const cmdName = "xdg-user-dir"
	if _, err := exec.LookPath(cmdName); err != nil {
		return storage.Child(homeURI, name)
	}

	lookupName := strings.ToUpper(name)
	loc, err := exec.Command(cmdName, lookupName).Output()
	if err != nil {
		return storage.Child(homeURI, name)
	}

	cleanPath := filepath.Clean(strings.TrimSpace(string(loc)))
	locURI := storage.NewFileURI(cleanPath)

	// xdg-user-dir answers $HOME for folders that are not configured
	if locURI.String() == homeURI.String() {
		childPath := filepath.Join(homeURI.Path(), name)
		if resolved, err := filepath.EvalSymlinks(childPath); err == nil {
			return storage.NewFileURI(resolved), nil
		}
		return storage.NewFileURI(childPath), nil
	}

	return locURI, nil
}

// libraryIcon is the folder's custom icon when it has one.
func libraryIcon(dir fyne.URI) fyne.Resource {
	if dir != nil {
		if details, err := fancyfs.DetailsForFolder(dir); err == nil && details != nil && details.BackgroundResource != nil {
			return details.BackgroundResource
		}
	}
	return theme.FolderOpenIcon()
}

// LibraryAction is a sheet action that lets the user choose the folder the
// picker reads. onChosen receives a catalog for the new folder; hosts
// usually rebuild the sheet with it.
func LibraryAction(parent fyne.Window, current fyne.ListableURI, onChosen func(*DirCatalog)) SheetAction {
	return SheetAction{
		Title: lang.L("Photo Library"),
		Icon:  libraryIcon(current),
		OnTapped: func() {
			chooseLibrary(parent, current, func(dir fyne.ListableURI, err error) {
				if err != nil {
					fyne.LogError("could not open media library", err)
					return
				}
				if dir == nil {
					return
				}
				catalog, err := NewDirCatalog(dir)
				if err != nil {
					fyne.LogError("could not open media library", err)
					return
				}
				onChosen(catalog)
			})
		},
	}
}

func chooseLibrary(parent fyne.Window, current fyne.ListableURI, callback func(fyne.ListableURI, error)) {
	if libraryChooserOverride(parent, current, callback) {
		return
	}

	d := fynedialog.NewFolderOpen(callback, parent)
	if current != nil {
		d.SetLocation(current)
	}
	d.Show()
}
