package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("resume", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["resume"]
	require.Len(t, files, 1)
	return files[0]
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewLocalStorage(dir)
	require.NoError(t, store.Init(ctx))

	name, location, err := store.SaveFile(ctx, multipartFile(t, "Jane.TXT", []byte("Jane Doe\njane@example.com")))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(name, "resume_"))
	assert.True(t, strings.HasSuffix(name, ".txt"))
	assert.Equal(t, filepath.Join(dir, name), location)

	data, err := store.ReadFile(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\njane@example.com", string(data))

	require.NoError(t, store.DeleteFile(ctx, name))
	_, err = store.ReadFile(ctx, name)
	assert.Error(t, err)
}

func TestLocalStorage_RejectsExtension(t *testing.T) {
	store := NewLocalStorage(t.TempDir())

	_, _, err := store.SaveFile(context.Background(), multipartFile(t, "payload.exe", []byte("MZ")))

	assert.ErrorIs(t, err, ErrInvalidExtension)
}

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    string
		wantErr bool
	}{
		{name: "pdf", file: "cv.pdf", want: ".pdf"},
		{name: "docx upper", file: "CV.DOCX", want: ".docx"},
		{name: "txt", file: "notes.txt", want: ".txt"},
		{name: "doc", file: "old.doc", wantErr: true},
		{name: "none", file: "README", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateExtension(tt.file)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidExtension)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteFile_RemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume_partial.txt")
	readErr := errors.New("connection reset")
	src := io.MultiReader(strings.NewReader("first half"), iotest.ErrReader(readErr))

	err := writeFile(path, src)

	require.ErrorIs(t, err, readErr)
	assert.NoFileExists(t, path)
}

func TestWriteFile_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume_full.txt")

	require.NoError(t, writeFile(path, strings.NewReader("Jane Doe")))

	assert.FileExists(t, path)
}
