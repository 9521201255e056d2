package login

import (
	"io"

	"github.com/pkg/browser"
)

func init() {
	// Keep xdg-open chatter out of the device-code prompt.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

var openURL = browser.OpenURL

func openBrowser(url string) error {
	return openURL(url)
}
