package models

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MediaSource is the closed set of inputs the export and upload paths accept
// for media content. Each variant carries exactly what its resolution needs;
// anything else fails at compile time instead of being shape-sniffed at run
// time.
type MediaSource interface {
	isMediaSource()
}

// RawBytes is media content already held in memory.
type RawBytes struct {
	Data []byte
	Mime string
}

// DataURI is an RFC 2397 data: URI, base64-encoded.
type DataURI struct {
	URI string
}

// RemoteURL is content fetched over HTTP at resolution time.
type RemoteURL struct {
	URL string
}

// StoredID refers to a blob in the local blob store by media id.
type StoredID struct {
	ID string
}

func (RawBytes) isMediaSource()  {}
func (DataURI) isMediaSource()   {}
func (RemoteURL) isMediaSource() {}
func (StoredID) isMediaSource()  {}

// BlobGetter resolves StoredID variants. Satisfied by the blobs repository.
type BlobGetter interface {
	Get(ctx context.Context, id string) (*MediaBlob, error)
}

// ResolveSource converts any MediaSource variant into raw bytes plus a MIME
// type. The switch is exhaustive over the closed set above.
func ResolveSource(ctx context.Context, src MediaSource, blobs BlobGetter, client *http.Client) ([]byte, string, error) {
	switch s := src.(type) {
	case RawBytes:
		return s.Data, s.Mime, nil

	case DataURI:
		return decodeDataURI(s.URI)

	case RemoteURL:
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("fetching %s: %w", s.URL, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetching %s: %s", s.URL, resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", err
		}
		return data, resp.Header.Get("Content-Type"), nil

	case StoredID:
		if blobs == nil {
			return nil, "", fmt.Errorf("no blob store to resolve stored id %q", s.ID)
		}
		blob, err := blobs.Get(ctx, s.ID)
		if err != nil {
			return nil, "", err
		}
		return blob.Data, blob.MimeType, nil

	default:
		return nil, "", fmt.Errorf("unsupported media source %T", src)
	}
}

func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI: no payload")
	}
	mime, isB64 := strings.CutSuffix(meta, ";base64")
	if !isB64 {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding data URI: %w", err)
	}
	return data, mime, nil
}
