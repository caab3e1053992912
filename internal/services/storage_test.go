package services

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	sent bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial resume"), nil
	}
	return 0, errors.New("connection reset")
}

func TestWriteUploadRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sess.pdf")

	err := writeUpload(path, &failingReader{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection reset")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteUploadWritesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sess.txt")

	require.NoError(t, writeUpload(path, bytes.NewReader([]byte("resume body"))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "resume body", string(data))
}

func TestSaveResumeNamesFileBySession(t *testing.T) {
	dir := t.TempDir()
	storage := NewStorageService(dir, 1<<20)

	filename, path, err := storage.SaveResume("sess-1", uploadHeader(t, "../../My CV.PDF", "%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "sess-1.pdf", filename)
	assert.Equal(t, filepath.Join(dir, "sess-1.pdf"), path)
}

func TestSaveResumeRejectsOversizedFile(t *testing.T) {
	storage := NewStorageService(t.TempDir(), 4)

	_, _, err := storage.SaveResume("sess-1", uploadHeader(t, "cv.txt", "too long"))
	var rejected *FileRejectedError
	assert.ErrorAs(t, err, &rejected)
}

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["resume"][0]
}
