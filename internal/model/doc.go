// Package model defines the core data structures used throughout bingwall.
//
// # Markets and resolutions
//
// Market metadata is a static lookup table keyed by MarketCode:
//
//	m, ok := model.MarketByCode("zh-CN")
//	fmt.Println(m.Name, m.AcceptLanguage()) // China zh-CN,en;q=0.9
//
// Resolution holds the size hint sent with metadata requests, while
// ImageVariants lists the fixed renditions the archive serves per wallpaper.
//
// # Wallpaper
//
// Wallpaper is the persisted metadata record for one (market, date) key:
//
//	key := wallpaper.Key() // CollectionKey{Market: "zh-CN", Date: "2025-01-02"}
//	url := wallpaper.ImageURL("UHD")
//
// Records are validated with Validate before persistence; records missing a
// title, URL template, or a parseable start date are discarded.
//
// # DownloadTask
//
// DownloadTask is a point-in-time snapshot of a download unit of work as
// handed out by the download queue. Live task state is owned by the queue's
// worker goroutines; snapshots are safe to retain and display.
package model
