// Package fonts provides the font used to measure and render node labels.
//
// The Go Regular font ships with golang.org/x/image, so it is available
// without system fonts. The SVG sink embeds it so measured label widths
// match what the browser draws.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontFamily is the CSS font-family name used for embedded labels.
const FontFamily = "Go"

// FallbackFontFamily lists fallbacks for viewers that ignore @font-face.
const FallbackFontFamily = `'Go', 'DejaVu Sans', 'Helvetica Neue', Arial, sans-serif`

// RegularTTF returns the TTF data of Go Regular.
func RegularTTF() []byte {
	return goregular.TTF
}

var (
	regular     *opentype.Font
	regularErr  error
	regularOnce sync.Once
)

// Regular returns the parsed Go Regular font. It is parsed once.
func Regular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = opentype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Cache for the base64-encoded font (computed once on first access).
var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// RegularBase64 returns the TTF data as a base64 string for data URLs.
func RegularBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}
