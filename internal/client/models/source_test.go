package models

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobs struct {
	blobs map[string]*MediaBlob
	err   error
}

func (f *fakeBlobs) Get(_ context.Context, id string) (*MediaBlob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.blobs[id], nil
}

func TestResolveSource_RawBytes(t *testing.T) {
	data, mime, err := ResolveSource(context.Background(), RawBytes{Data: []byte{1, 2}, Mime: "image/jpeg"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, data)
	assert.Equal(t, "image/jpeg", mime)
}

func TestResolveSource_DataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	data, mime, err := ResolveSource(context.Background(), DataURI{URI: "data:audio/wav;base64," + payload}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)
	assert.Equal(t, "audio/wav", mime)

	_, _, err = ResolveSource(context.Background(), DataURI{URI: "data:audio/wav,plain"}, nil, nil)
	require.Error(t, err)

	_, _, err = ResolveSource(context.Background(), DataURI{URI: "nope"}, nil, nil)
	require.Error(t, err)
}

func TestResolveSource_RemoteURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png!"))
	}))
	defer ts.Close()

	data, mime, err := ResolveSource(context.Background(), RemoteURL{URL: ts.URL}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("png!"), data)
	assert.Equal(t, "image/png", mime)
}

func TestResolveSource_StoredID(t *testing.T) {
	blobs := &fakeBlobs{blobs: map[string]*MediaBlob{
		"m1": {ID: "m1", Data: []byte("bytes"), MimeType: "image/jpeg"},
	}}

	data, mime, err := ResolveSource(context.Background(), StoredID{ID: "m1"}, blobs, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("bytes"), data)
	assert.Equal(t, "image/jpeg", mime)

	_, _, err = ResolveSource(context.Background(), StoredID{ID: "m1"}, nil, nil)
	require.Error(t, err, "stored id without a blob store must fail")
}
