package bing

// archiveResponse mirrors the JSON document served by the HPImageArchive
// endpoint. Only the fields the collector consumes are mapped.
type archiveResponse struct {
	Images []archiveImage `json:"images"`
}

// archiveImage is one wallpaper entry of the archive response.
type archiveImage struct {
	StartDate     string `json:"startdate"`
	FullStartDate string `json:"fullstartdate"`
	EndDate       string `json:"enddate"`
	URL           string `json:"url"`
	URLBase       string `json:"urlbase"`
	Copyright     string `json:"copyright"`
	CopyrightLink string `json:"copyrightlink"`
	Title         string `json:"title"`
	Quiz          string `json:"quiz"`
	Hash          string `json:"hsh"`
}
