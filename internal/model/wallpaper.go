package model

import (
	"fmt"
	"strings"
	"time"
)

// BingBaseURL is the host that serves the image files referenced by a
// wallpaper's urlbase.
const BingBaseURL = "https://www.bing.com"

// apiDateLayout is the compact date format used by the archive API
// (startdate/enddate fields).
const apiDateLayout = "20060102"

// DateLayout is the calendar-date format used for collection keys and
// stored records.
const DateLayout = "2006-01-02"

// TimeInfo is the validity window of a wallpaper as reported by the API.
type TimeInfo struct {
	// StartDate is the first day the wallpaper was shown (API compact form).
	StartDate string `json:"startDate"`

	// FullStartDate includes the hour and minute ("202501020800").
	FullStartDate string `json:"fullStartDate"`

	// EndDate is the day after the wallpaper rotated out.
	EndDate string `json:"endDate"`
}

// Start parses the start date. It fails if the API returned a malformed or
// empty value.
func (t TimeInfo) Start() (time.Time, error) {
	return time.Parse(apiDateLayout, t.StartDate)
}

// ImageResolution is one resolved image URL stored with a record.
type ImageResolution struct {
	Resolution string `json:"resolution"`
	URL        string `json:"url"`
	Size       string `json:"size"`
}

// Wallpaper is the metadata record persisted for one (market, date) key.
//
// A record is immutable once stored: the store only ever writes a key
// once, and re-collection of an existing key is a silent skip.
type Wallpaper struct {
	// Date is the calendar date this record belongs to, in DateLayout form.
	Date string `json:"date"`

	// Country is the market's display name ("China", "Japan", ...).
	Country string `json:"country"`

	// MarketCode is the market's wire code ("zh-CN", ...).
	MarketCode MarketCode `json:"marketCode"`

	Title         string `json:"title"`
	Copyright     string `json:"copyright"`
	CopyrightLink string `json:"copyrightLink"`

	// Description is the copyright text with the attribution stripped.
	Description string `json:"description"`

	Quiz string `json:"quiz"`

	// Hash is the content hash reported by the API (hsh field).
	Hash string `json:"hash"`

	// OriginalURLBase is the API's urlbase; image URLs derive from it.
	OriginalURLBase string `json:"originalUrlBase"`

	// ImageResolutions are the downloadable renditions of this wallpaper.
	ImageResolutions []ImageResolution `json:"imageResolutions"`

	TimeInfo  TimeInfo  `json:"timeInfo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Key returns the collection key identifying this record.
func (w *Wallpaper) Key() CollectionKey {
	return CollectionKey{Market: w.MarketCode, Date: w.Date}
}

// ID identifies the wallpaper for download-dedup purposes. Two records of
// the same image share a hash, so the key pair is (market, date) here too.
func (w *Wallpaper) ID() string {
	return string(w.MarketCode) + "/" + w.Date
}

// ImageURL returns the download URL for the named variant tag, or an empty
// string when the record carries no such variant.
func (w *Wallpaper) ImageURL(tag string) string {
	for _, r := range w.ImageResolutions {
		if r.Resolution == tag {
			return r.URL
		}
	}
	return ""
}

// ValidationError reports a fetched record that fails the storability
// rules. Callers count these separately from transport failures.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "wallpaper: " + e.Reason
}

// Validate rejects records that would be useless once stored: a record
// needs a title, an image URL template, and a parseable start date.
// Invalid records are discarded before they reach the store.
func (w *Wallpaper) Validate() error {
	if strings.TrimSpace(w.Title) == "" {
		return &ValidationError{Reason: "missing title"}
	}
	if strings.TrimSpace(w.OriginalURLBase) == "" {
		return &ValidationError{Reason: "missing url base"}
	}
	if _, err := w.TimeInfo.Start(); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid start date %q", w.TimeInfo.StartDate)}
	}
	return nil
}

// ExpandImageResolutions builds the full variant list for a urlbase,
// e.g. "/th?id=OHR.Foo" -> "https://www.bing.com/th?id=OHR.Foo_UHD.jpg".
func ExpandImageResolutions(urlBase string) []ImageResolution {
	out := make([]ImageResolution, 0, len(ImageVariants))
	for _, v := range ImageVariants {
		out = append(out, ImageResolution{
			Resolution: v.Tag,
			URL:        BingBaseURL + urlBase + v.Suffix,
			Size:       v.SizeLabel,
		})
	}
	return out
}

// ExtractDescription strips the "(© ...)" attribution commonly appended to
// the copyright text, returning the leading description.
func ExtractDescription(copyright string) string {
	if copyright == "" {
		return ""
	}
	if i := strings.Index(copyright, "("); i >= 0 {
		return strings.TrimSpace(copyright[:i])
	}
	return copyright
}

// CollectionKey is the (market, date) pair uniquely identifying one
// metadata record.
type CollectionKey struct {
	Market MarketCode
	Date   string
}

func (k CollectionKey) String() string {
	return string(k.Market) + "/" + k.Date
}
