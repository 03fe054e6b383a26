package model

import "sort"

// MarketCode identifies a geographic/language market served by the Bing
// image archive, e.g. "zh-CN" or "en-US".
type MarketCode string

// Supported market codes.
const (
	MarketChina         MarketCode = "zh-CN"
	MarketUnitedStates  MarketCode = "en-US"
	MarketUnitedKingdom MarketCode = "en-GB"
	MarketJapan         MarketCode = "ja-JP"
	MarketGermany       MarketCode = "de-DE"
	MarketFrance        MarketCode = "fr-FR"
	MarketSpain         MarketCode = "es-ES"
	MarketItaly         MarketCode = "it-IT"
	MarketRussia        MarketCode = "ru-RU"
	MarketSouthKorea    MarketCode = "ko-KR"
	MarketBrazil        MarketCode = "pt-BR"
	MarketAustralia     MarketCode = "en-AU"
	MarketCanada        MarketCode = "en-CA"
	MarketIndia         MarketCode = "en-IN"
)

// Market describes one supported market: its wire code plus the metadata
// used to build outbound requests and to label output.
//
// The catalog is a static lookup table; there is no runtime discovery.
//
// Example:
//
//	m, ok := model.MarketByCode("ja-JP")
//	if ok {
//	    req.Header.Set("Accept-Language", m.AcceptLanguage())
//	}
type Market struct {
	// Code is the mkt parameter sent to the archive API.
	Code MarketCode

	// Name is the English display name, also used as the per-market
	// directory name in the file store ("China", "UnitedStates", ...).
	Name string

	// Flag is the emoji flag for UI display.
	Flag string

	// Language is the full locale for the Accept-Language header.
	Language string

	// SetLang is the short language code for the API's setlang parameter.
	SetLang string
}

// AcceptLanguage returns the Accept-Language header value for this market,
// with English as the fallback language.
func (m Market) AcceptLanguage() string {
	return m.Language + ",en;q=0.9"
}

var markets = map[MarketCode]Market{
	MarketChina:         {Code: MarketChina, Name: "China", Flag: "🇨🇳", Language: "zh-CN", SetLang: "zh"},
	MarketUnitedStates:  {Code: MarketUnitedStates, Name: "UnitedStates", Flag: "🇺🇸", Language: "en-US", SetLang: "en"},
	MarketUnitedKingdom: {Code: MarketUnitedKingdom, Name: "UnitedKingdom", Flag: "🇬🇧", Language: "en-GB", SetLang: "en"},
	MarketJapan:         {Code: MarketJapan, Name: "Japan", Flag: "🇯🇵", Language: "ja-JP", SetLang: "ja"},
	MarketGermany:       {Code: MarketGermany, Name: "Germany", Flag: "🇩🇪", Language: "de-DE", SetLang: "de"},
	MarketFrance:        {Code: MarketFrance, Name: "France", Flag: "🇫🇷", Language: "fr-FR", SetLang: "fr"},
	MarketSpain:         {Code: MarketSpain, Name: "Spain", Flag: "🇪🇸", Language: "es-ES", SetLang: "es"},
	MarketItaly:         {Code: MarketItaly, Name: "Italy", Flag: "🇮🇹", Language: "it-IT", SetLang: "it"},
	MarketRussia:        {Code: MarketRussia, Name: "Russia", Flag: "🇷🇺", Language: "ru-RU", SetLang: "ru"},
	MarketSouthKorea:    {Code: MarketSouthKorea, Name: "SouthKorea", Flag: "🇰🇷", Language: "ko-KR", SetLang: "ko"},
	MarketBrazil:        {Code: MarketBrazil, Name: "Brazil", Flag: "🇧🇷", Language: "pt-BR", SetLang: "pt"},
	MarketAustralia:     {Code: MarketAustralia, Name: "Australia", Flag: "🇦🇺", Language: "en-AU", SetLang: "en"},
	MarketCanada:        {Code: MarketCanada, Name: "Canada", Flag: "🇨🇦", Language: "en-CA", SetLang: "en"},
	MarketIndia:         {Code: MarketIndia, Name: "India", Flag: "🇮🇳", Language: "en-IN", SetLang: "en"},
}

// MarketByCode looks up a market by its wire code.
func MarketByCode(code MarketCode) (Market, bool) {
	m, ok := markets[code]
	return m, ok
}

// MarketByName looks up a market by its English display name,
// e.g. "Japan". Used when parsing the TARGET_COUNTRY environment value.
func MarketByName(name string) (Market, bool) {
	for _, m := range markets {
		if m.Name == name {
			return m, true
		}
	}
	return Market{}, false
}

// AllMarkets returns every supported market, sorted by code so callers see
// a stable order.
func AllMarkets() []Market {
	out := make([]Market, 0, len(markets))
	for _, m := range markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
