package bing

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/norwind/bingwall/internal/model"
)

// archiveBaseURL is the metadata endpoint. The global host serves every
// market; the per-market variation lives entirely in the query string and
// the Accept-Language header.
const archiveBaseURL = "https://global.bing.com/HPImageArchive.aspx"

// jsonClient fetches and decodes a JSON document with extra request headers.
// *http.Client of the internal http package satisfies it.
type jsonClient interface {
	GetJSON(ctx context.Context, url string, headers map[string]string, v any) error
}

// FetchError reports a failed metadata fetch for one (market, day) tuple.
// Callers use it to attribute failures without parsing error text.
type FetchError struct {
	Market   model.MarketCode
	DayIndex int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("bing: fetch %s day %d: %v", e.Market, e.DayIndex, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches wallpaper metadata from the Bing image archive.
//
// One request yields one wallpaper for one market and one day offset
// (0 = today, 1 = yesterday, ...). Client performs no retries and no
// caching; failure isolation is the orchestrator's job.
//
// Example:
//
//	client := bing.NewClient(httpClient, model.ResolutionUHD4K)
//	wp, err := client.Fetch(ctx, market, 0)
type Client struct {
	http       jsonClient
	baseURL    string
	resolution model.Resolution
}

// NewClient creates a metadata client requesting images at the given
// preferred resolution.
func NewClient(httpClient jsonClient, resolution model.Resolution) *Client {
	return &Client{
		http:       httpClient,
		baseURL:    archiveBaseURL,
		resolution: resolution,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint.
// Used by tests to point at a local server.
func NewClientWithBaseURL(httpClient jsonClient, baseURL string, resolution model.Resolution) *Client {
	return &Client{
		http:       httpClient,
		baseURL:    baseURL,
		resolution: resolution,
	}
}

// Fetch retrieves the wallpaper of one market for one day offset and maps
// it to a metadata record. The record is validated before it is returned;
// a response without a title, url base, or parseable start date is an
// error, not a partial record.
//
// All failures are reported as *FetchError.
func (c *Client) Fetch(ctx context.Context, market model.Market, dayIndex int) (*model.Wallpaper, error) {
	q := url.Values{}
	q.Set("format", "js")
	q.Set("idx", strconv.Itoa(dayIndex))
	q.Set("n", "1")
	q.Set("mkt", string(market.Code))
	q.Set("setlang", market.SetLang)
	q.Set("uhd", "1")
	q.Set("uhdwidth", strconv.Itoa(c.resolution.Width))
	q.Set("uhdheight", strconv.Itoa(c.resolution.Height))
	requestURL := c.baseURL + "?" + q.Encode()

	headers := map[string]string{
		"Accept-Language": market.AcceptLanguage(),
	}

	var resp archiveResponse
	if err := c.http.GetJSON(ctx, requestURL, headers, &resp); err != nil {
		return nil, &FetchError{Market: market.Code, DayIndex: dayIndex, Err: err}
	}
	if len(resp.Images) == 0 {
		return nil, &FetchError{Market: market.Code, DayIndex: dayIndex, Err: fmt.Errorf("empty archive response")}
	}

	wp, err := mapImage(market, resp.Images[0])
	if err != nil {
		return nil, &FetchError{Market: market.Code, DayIndex: dayIndex, Err: err}
	}
	return wp, nil
}

// mapImage converts one archive entry into a validated metadata record.
func mapImage(market model.Market, img archiveImage) (*model.Wallpaper, error) {
	start, err := time.Parse("20060102", img.StartDate)
	if err != nil {
		return nil, &model.ValidationError{Reason: fmt.Sprintf("invalid start date %q", img.StartDate)}
	}

	wp := &model.Wallpaper{
		Date:             start.Format(model.DateLayout),
		Country:          market.Name,
		MarketCode:       market.Code,
		Title:            img.Title,
		Copyright:        img.Copyright,
		CopyrightLink:    img.CopyrightLink,
		Description:      model.ExtractDescription(img.Copyright),
		Quiz:             img.Quiz,
		Hash:             img.Hash,
		OriginalURLBase:  img.URLBase,
		ImageResolutions: model.ExpandImageResolutions(img.URLBase),
		TimeInfo: model.TimeInfo{
			StartDate:     img.StartDate,
			FullStartDate: img.FullStartDate,
			EndDate:       img.EndDate,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := wp.Validate(); err != nil {
		return nil, err
	}
	return wp, nil
}
