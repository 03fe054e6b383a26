package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	// userAgent mimics a desktop browser; the archive serves reduced
	// metadata to unknown clients.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	acceptJSON  = "application/json,text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	acceptImage = "image/webp,image/apng,image/*,*/*;q=0.8"

	// copyBufferSize is the chunk size of the download read loop.
	// Cancellation is observed between chunks, so this also bounds the
	// cancellation latency of an in-flight transfer.
	copyBufferSize = 80 * 1024

	// progressInterval throttles progress callbacks; reporting every
	// chunk would swamp subscribers on fast links.
	progressInterval = 100 * time.Millisecond
)

// Client wraps HTTP operations against the Bing image archive.
//
// Client provides:
//   - Browser-like request headers the archive expects
//   - JSON metadata fetching with per-request extra headers
//   - Streaming image download with a throttled progress callback
//
// Example usage:
//
//	client := http.NewClient()
//
//	var resp ArchiveResponse
//	err := client.GetJSON(ctx, url, map[string]string{
//	    "Accept-Language": "ja-JP,en;q=0.9",
//	}, &resp)
//
//	// Stream an image to disk with progress
//	err = client.DownloadFile(ctx, imageURL, "/path/img.jpg", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with a 30 second transport timeout.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithTimeout creates a client with a custom transport timeout.
// A zero timeout disables it; long image transfers are bounded by caller
// cancellation instead.
func NewClientWithTimeout(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetJSON performs a GET request and decodes the JSON response body into v.
//
// The extra headers are set on top of the default browser-like set; use it
// for the market-specific Accept-Language header.
//
// Returns an error if the request fails, the response status is not 200 OK,
// or the body is not valid JSON.
func (c *Client) GetJSON(ctx context.Context, url string, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("Cache-Control", "no-cache")
	for k, val := range headers {
		req.Header.Set(k, val)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// Open starts a streamed GET transfer and hands the body to the caller.
//
// The caller receives the readable byte stream and the advertised total
// size (-1 when the server sent no Content-Length) and is responsible for
// reading, writing, progress accounting, and closing the body.
//
// Open performs no retries and no caching.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptImage)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return resp.Body, resp.ContentLength, nil
}

// DownloadFile streams a URL to destPath with an optional progress callback.
//
// The transfer loop reads in copyBufferSize chunks and checks ctx between
// chunks, so cancellation takes effect within one chunk boundary. The
// callback fires at most every progressInterval plus once at completion,
// with (bytesWritten, totalBytes); totalBytes is -1 when unknown.
//
// Failure handling: a non-2xx response, a transport error, a cancelled
// context, or a zero-byte result all remove the partial destination file
// before returning the error. A cancelled transfer returns ctx.Err().
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	body, total, err := c.Open(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}

	written, copyErr := copyWithProgress(ctx, file, body, total, onProgress)

	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil && written == 0 {
		copyErr = fmt.Errorf("downloaded file is empty: %s", url)
	}
	if copyErr != nil {
		os.Remove(destPath)
		return copyErr
	}
	return nil
}

// copyWithProgress is the cancellation-aware read loop behind DownloadFile.
func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, onProgress func(written, total int64)) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64
	lastReport := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)

			if onProgress != nil && time.Since(lastReport) >= progressInterval {
				onProgress(written, total)
				lastReport = time.Now()
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}

	if onProgress != nil {
		onProgress(written, total)
	}
	return written, nil
}
