//go:build !flatpak || windows || android || ios || wasm || js

package dialog

import "fyne.io/fyne/v2"

func libraryChooserOverride(fyne.Window, fyne.ListableURI, func(fyne.ListableURI, error)) bool {
	return false
}
