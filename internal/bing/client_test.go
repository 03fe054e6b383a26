package bing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ihttp "github.com/norwind/bingwall/internal/http"
	"github.com/norwind/bingwall/internal/model"
)

const sampleResponse = `{
	"images": [{
		"startdate": "20250102",
		"fullstartdate": "202501020800",
		"enddate": "20250103",
		"url": "/th?id=OHR.Sample_UHD.jpg",
		"urlbase": "/th?id=OHR.Sample",
		"copyright": "Mountain lake at dawn (© Somebody/Agency)",
		"copyrightlink": "https://www.bing.com/search?q=mountain+lake",
		"title": "Mountain lake",
		"quiz": "/search?q=Bing+homepage+quiz",
		"hsh": "abc123"
	}]
}`

func TestFetch(t *testing.T) {
	var gotQuery map[string]string
	var gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	market, _ := model.MarketByCode(model.MarketJapan)
	client := NewClientWithBaseURL(ihttp.NewClient(), server.URL, model.ResolutionUHD4K)

	wp, err := client.Fetch(context.Background(), market, 3)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	wantQuery := map[string]string{
		"format":    "js",
		"idx":       "3",
		"n":         "1",
		"mkt":       "ja-JP",
		"setlang":   "ja",
		"uhd":       "1",
		"uhdwidth":  "3840",
		"uhdheight": "2160",
	}
	for k, want := range wantQuery {
		if gotQuery[k] != want {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], want)
		}
	}
	if gotLang != market.AcceptLanguage() {
		t.Errorf("Accept-Language = %q, want %q", gotLang, market.AcceptLanguage())
	}

	if wp.Date != "2025-01-02" {
		t.Errorf("Date = %q, want 2025-01-02", wp.Date)
	}
	if wp.MarketCode != model.MarketJapan {
		t.Errorf("MarketCode = %q", wp.MarketCode)
	}
	if wp.Country != "Japan" {
		t.Errorf("Country = %q, want Japan", wp.Country)
	}
	if wp.Title != "Mountain lake" {
		t.Errorf("Title = %q", wp.Title)
	}
	if wp.Description != "Mountain lake at dawn" {
		t.Errorf("Description = %q, want attribution stripped", wp.Description)
	}
	if wp.Hash != "abc123" {
		t.Errorf("Hash = %q", wp.Hash)
	}
	if len(wp.ImageResolutions) != len(model.ImageVariants) {
		t.Fatalf("got %d image resolutions, want %d", len(wp.ImageResolutions), len(model.ImageVariants))
	}
	if got := wp.ImageURL("UHD"); got != model.BingBaseURL+"/th?id=OHR.Sample_UHD.jpg" {
		t.Errorf("UHD url = %q", got)
	}
}

func TestFetchEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"images":[]}`))
	}))
	defer server.Close()

	market, _ := model.MarketByCode(model.MarketChina)
	client := NewClientWithBaseURL(ihttp.NewClient(), server.URL, model.ResolutionUHD4K)

	_, err := client.Fetch(context.Background(), market, 0)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Fetch() error = %v, want *FetchError", err)
	}
	if fetchErr.Market != model.MarketChina || fetchErr.DayIndex != 0 {
		t.Errorf("FetchError tuple = %s/%d", fetchErr.Market, fetchErr.DayIndex)
	}
}

func TestFetchInvalidRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"images":[{"startdate":"20250102","urlbase":"/th?id=OHR.X","title":""}]}`))
	}))
	defer server.Close()

	market, _ := model.MarketByCode(model.MarketChina)
	client := NewClientWithBaseURL(ihttp.NewClient(), server.URL, model.ResolutionUHD4K)

	if _, err := client.Fetch(context.Background(), market, 0); err == nil {
		t.Fatal("expected validation error for record without a title")
	}
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	market, _ := model.MarketByCode(model.MarketChina)
	client := NewClientWithBaseURL(ihttp.NewClient(), server.URL, model.ResolutionUHD4K)

	if _, err := client.Fetch(context.Background(), market, 0); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
