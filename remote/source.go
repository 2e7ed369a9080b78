// Package remote reads cache files served over HTTP.
//
// Each cache file is fetched with HTTP range requests, so only the index
// entries and block chains a lookup touches are transferred. The server must
// support Range and report the content size.
package remote

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// ErrRangeUnsupported is returned when the server ignores Range headers.
var ErrRangeUnsupported = errors.New("remote: range requests not supported")

// Source implements store.ByteSource with HTTP range requests.
type Source struct {
	url          string
	client       *http.Client
	headers      http.Header
	size         int64
	etag         string
	lastModified string
}

// NewSource returns a Source for url. It probes the server for the content
// size and validators; later reads are pinned to that version of the file
// with If-Match and If-Unmodified-Since.
func NewSource(url string, opts ...Option) (*Source, error) {
	return openSource(url, newOptions(opts))
}

func openSource(url string, o options) (*Source, error) {
	s := &Source{
		url:     url,
		client:  o.client,
		headers: o.headers,
	}
	var err error
	s.size, s.etag, s.lastModified, err = s.fetchMetadata()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return s, nil
}

// Size returns the size of the remote file.
func (s *Source) Size() int64 {
	return s.size
}

// SourceID identifies the remote file version.
func (s *Source) SourceID() string {
	if s.etag != "" {
		return s.url + "#" + s.etag
	}
	return s.url + "#" + strconv.FormatInt(s.size, 10)
}

// ReadAt reads len(p) bytes at off with one range request.
func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, fmt.Errorf("remote: read at %d: negative offset", off)
	}
	if off >= s.size {
		return 0, io.EOF
	}

	end := off + int64(len(p)) - 1
	expected := len(p)
	if end >= s.size {
		end = s.size - 1
		expected = int(end - off + 1)
	}

	resp, err := s.get(fmt.Sprintf("bytes=%d-%d", off, end))
	if err != nil {
		return 0, err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusRequestedRangeNotSatisfiable:
		return 0, io.EOF
	case http.StatusOK:
		return 0, ErrRangeUnsupported
	default:
		return 0, fmt.Errorf("remote: range request failed: %s", resp.Status)
	}

	n, err := io.ReadFull(resp.Body, p[:expected])
	if err != nil {
		return n, err
	}
	if expected < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Source) fetchMetadata() (size int64, etag, lastModified string, err error) {
	size = -1
	if resp, err := s.do(http.MethodHead, ""); err == nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			drain(resp)
			return 0, "", "", errNotFound
		case http.StatusOK:
			size = resp.ContentLength
			etag = resp.Header.Get("ETag")
			lastModified = resp.Header.Get("Last-Modified")
		}
		drain(resp)
	}

	rangeSize, rangeETag, rangeLastModified, err := s.rangeProbe()
	if err != nil {
		return 0, "", "", err
	}
	if size > 0 && size != rangeSize {
		return 0, "", "", fmt.Errorf("remote: content size mismatch: head=%d range=%d", size, rangeSize)
	}
	if etag == "" {
		etag = rangeETag
	}
	if lastModified == "" {
		lastModified = rangeLastModified
	}
	return rangeSize, etag, lastModified, nil
}

// rangeProbe asks for the first byte to learn the total size.
func (s *Source) rangeProbe() (size int64, etag, lastModified string, err error) {
	resp, err := s.get("bytes=0-0")
	if err != nil {
		return 0, "", "", err
	}
	defer drain(resp)

	switch resp.StatusCode {
	case http.StatusPartialContent:
	case http.StatusNotFound:
		return 0, "", "", errNotFound
	case http.StatusRequestedRangeNotSatisfiable:
		// Empty files cannot satisfy any range.
		return 0, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), nil
	case http.StatusOK:
		return 0, "", "", ErrRangeUnsupported
	default:
		return 0, "", "", fmt.Errorf("remote: range probe failed: %s", resp.Status)
	}

	crange := resp.Header.Get("Content-Range")
	if crange == "" {
		return 0, "", "", errors.New("remote: range probe missing Content-Range")
	}
	size, err = parseContentRange(crange)
	if err != nil {
		return 0, "", "", err
	}
	return size, resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), nil
}

func (s *Source) get(byteRange string) (*http.Response, error) {
	return s.do(http.MethodGet, byteRange)
}

func (s *Source) do(method, byteRange string) (*http.Response, error) {
	req, err := http.NewRequest(method, s.url, nil)
	if err != nil {
		return nil, err
	}
	for key, values := range s.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "identity")
	}
	if byteRange != "" {
		req.Header.Set("Range", byteRange)
		if s.etag != "" && req.Header.Get("If-Match") == "" {
			req.Header.Set("If-Match", s.etag)
		}
		if s.lastModified != "" && req.Header.Get("If-Unmodified-Since") == "" {
			req.Header.Set("If-Unmodified-Since", s.lastModified)
		}
	}
	return s.client.Do(req)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// parseContentRange returns the complete length from "bytes a-b/size".
func parseContentRange(value string) (int64, error) {
	value = strings.TrimSpace(value)
	rest, ok := strings.CutPrefix(value, "bytes ")
	if !ok {
		return 0, fmt.Errorf("remote: invalid Content-Range %q", value)
	}
	_, total, ok := strings.Cut(rest, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("remote: invalid Content-Range %q", value)
	}
	size, err := strconv.ParseInt(total, 10, 64)
	if err != nil || size < 0 {
		return 0, fmt.Errorf("remote: invalid Content-Range %q", value)
	}
	return size, nil
}
