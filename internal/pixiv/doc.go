// Package pixiv adapts the pixiv app API to the collaborator interfaces used
// by the collection cache and the download pipeline.
//
// Client is the online PageSource: it maps a collection.Request onto the
// matching app-api endpoint and returns the raw JSON body. FilePageSource
// replays pages previously saved by Recorder, which makes offline browsing
// and fixture-driven tests possible. Downloader fetches image bytes with the
// Referer header the image CDN requires and writes them atomically.
//
// ParseUserID and ParseArtworkID accept either a bare numeric id or a
// profile/artwork URL as typed by the user.
package pixiv
