package model

import "fmt"

// Resolution is a named image-size variant requested from the archive API.
//
// Two distinct sets exist:
//   - API resolutions (this type): the size hint sent with a metadata
//     request via the uhdwidth/uhdheight parameters.
//   - Image variants (ImageVariant): the fixed URL suffixes under which the
//     archive actually serves image files.
type Resolution struct {
	// Name is the display label, e.g. "4K Ultra HD".
	Name string

	// Width and Height are the requested pixel dimensions.
	Width  int
	Height int
}

// Size returns the "WxH" form, e.g. "3840x2160".
func (r Resolution) Size() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// API resolutions supported for metadata requests.
var (
	ResolutionUHD4K    = Resolution{Name: "4K Ultra HD", Width: 3840, Height: 2160}
	ResolutionQHD2K    = Resolution{Name: "2K QHD", Width: 2560, Height: 1440}
	ResolutionFullHD   = Resolution{Name: "Full HD", Width: 1920, Height: 1080}
	ResolutionHD       = Resolution{Name: "HD", Width: 1280, Height: 720}
	ResolutionStandard = Resolution{Name: "Standard", Width: 1366, Height: 768}
)

// ResolutionByName maps a settings value ("UHD4K", "FullHD", ...) to its
// Resolution. Unknown names fall back to 4K, the archive's richest variant.
func ResolutionByName(name string) Resolution {
	switch name {
	case "QHD2K":
		return ResolutionQHD2K
	case "FullHD":
		return ResolutionFullHD
	case "HD":
		return ResolutionHD
	case "Standard":
		return ResolutionStandard
	default:
		return ResolutionUHD4K
	}
}

// ImageVariant is one downloadable rendition of a wallpaper: the archive
// serves each wallpaper under a fixed set of URL suffixes.
type ImageVariant struct {
	// Tag is the variant label stored with the record ("UHD", "HD", ...).
	Tag string

	// Suffix is appended to the wallpaper's urlbase to form the image URL.
	Suffix string

	// SizeLabel is the human-readable size ("Ultra High Definition (~4K)").
	SizeLabel string
}

// ImageVariants lists the renditions expanded for every stored record,
// in the order they are written.
var ImageVariants = []ImageVariant{
	{Tag: "UHD", Suffix: "_UHD.jpg", SizeLabel: "Ultra High Definition (~4K)"},
	{Tag: "HD", Suffix: "_1920x1200.jpg", SizeLabel: "1920x1200"},
	{Tag: "Full HD", Suffix: "_1920x1080.jpg", SizeLabel: "1920x1080"},
	{Tag: "Standard", Suffix: "_1366x768.jpg", SizeLabel: "1366x768"},
}
