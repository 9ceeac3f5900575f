package storage

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxImageSize*2))
	return req.MultipartForm.File["image"][0]
}

func TestImages_SaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "businesses")
	imgs, err := NewImages(dir)
	require.NoError(t, err)

	name, err := imgs.Save(fileHeader(t, "Logo.PNG", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(name))

	stored, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	require.NoError(t, imgs.Remove(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, imgs.Remove(name), "removing twice is fine")
	assert.Error(t, imgs.Remove("../escape.png"))
}

func TestImages_RejectsNonImages(t *testing.T) {
	imgs, err := NewImages(t.TempDir())
	require.NoError(t, err)

	_, err = imgs.Save(fileHeader(t, "notes.png", []byte("just some text")))
	assert.ErrorIs(t, err, ErrImageType)

	entries, err := os.ReadDir(imgs.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImages_RejectsLargeFiles(t *testing.T) {
	imgs, err := NewImages(t.TempDir())
	require.NoError(t, err)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxImageSize)...)
	_, err = imgs.Save(fileHeader(t, "big.png", big))
	assert.ErrorIs(t, err, ErrImageSize)
}

func TestImages_ExtensionFromContent(t *testing.T) {
	imgs, err := NewImages(t.TempDir())
	require.NoError(t, err)

	name, err := imgs.Save(fileHeader(t, "upload", []byte("GIF89a\x01\x00\x01\x00")))
	require.NoError(t, err)
	assert.Equal(t, ".gif", filepath.Ext(name))
}
