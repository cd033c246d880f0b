package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aTrapDeer/utworld/internal/model"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetGray(x, x%h, color.Gray{Y: 200})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestIsAllowedAndFileType(t *testing.T) {
	assert.True(t, IsAllowed("image/jpeg"))
	assert.True(t, IsAllowed("application/pdf"))
	assert.False(t, IsAllowed("application/zip"))
	assert.False(t, IsAllowed("text/html"))
	assert.Len(t, AllowedTypes(), 12)
	assert.Equal(t, "application/pdf", AllowedTypes()[0])

	assert.Equal(t, model.FileTypeImage, FileType("image/png"))
	assert.Equal(t, model.FileTypeVideo, FileType("video/mp4"))
	assert.Equal(t, model.FileTypeAudio, FileType("audio/mpeg"))
	assert.Equal(t, model.FileTypeDocument, FileType("application/pdf"))
	assert.Equal(t, "other", FileType("text/plain"))
}

func newTestStorage(t *testing.T, max int64) (*Storage, string) {
	dir := t.TempDir()
	s := NewStorage(dir, "http://cdn.test/assets/", max)
	s.now = func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) }
	return s, dir
}

func TestSave_LargeImageGetsThumbnail(t *testing.T) {
	s, dir := newTestStorage(t, 0)
	stored, err := s.Save(bytes.NewReader(jpegBytes(t, 800, 600)), "Crowd.JPG", "image/jpeg")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Key, "assets/2024/03/09/"))
	assert.True(t, strings.HasSuffix(stored.Key, ".jpg"))
	assert.Equal(t, "http://cdn.test/assets/"+stored.Key, stored.URL)
	assert.Equal(t, "Crowd.JPG", stored.OriginalFilename)
	assert.Equal(t, model.FileTypeImage, stored.FileType)
	require.NotNil(t, stored.Width)
	assert.Equal(t, 800, *stored.Width)
	assert.Equal(t, 600, *stored.Height)
	require.NotNil(t, stored.ThumbnailURL)
	assert.Contains(t, *stored.ThumbnailURL, "/thumbnails/2024/03/09/")

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(stored.Key)))
	require.NoError(t, err)

	require.NoError(t, s.Delete(stored.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(stored.Key)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Delete(stored.Key))
}

func TestSave_SmallImageNoThumbnail(t *testing.T) {
	s, _ := newTestStorage(t, 0)
	stored, err := s.Save(bytes.NewReader(jpegBytes(t, 100, 50)), "a.jpg", "image/jpeg")
	require.NoError(t, err)
	require.NotNil(t, stored.Width)
	assert.Equal(t, 100, *stored.Width)
	assert.Nil(t, stored.ThumbnailURL)
}

func TestSave_NonImage(t *testing.T) {
	s, _ := newTestStorage(t, 0)
	stored, err := s.Save(strings.NewReader("%PDF-1.4"), "rider.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, model.FileTypeDocument, stored.FileType)
	assert.Nil(t, stored.Width)
	assert.EqualValues(t, 8, stored.Size)

	a := stored.Asset(nil, model.Ptr("rider"), nil)
	assert.Equal(t, stored.Key, a.StorageKey)
	assert.Equal(t, stored.URL, a.CloudfrontURL)
	assert.Equal(t, "rider", model.Deref(a.AltText))
}

func TestSave_TooLarge(t *testing.T) {
	s, _ := newTestStorage(t, 4)
	_, err := s.Save(strings.NewReader("12345"), "a.mp3", "audio/mpeg")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDelete_RejectsTraversal(t *testing.T) {
	s, _ := newTestStorage(t, 0)
	assert.Error(t, s.Delete("../../etc/passwd"))
}
