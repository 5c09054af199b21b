package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_UploadDownloadDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	docID := uuid.New()

	path, err := s.Upload(ctx, docID, "opinion draft.txt", strings.NewReader("the document body"))
	require.NoError(t, err)
	assert.Contains(t, path, docID.String())
	assert.NotContains(t, path, " ")

	reader, err := s.Download(ctx, path)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, "the document body", string(data))

	require.NoError(t, s.Delete(ctx, path))

	_, err = s.Download(ctx, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document not found")
}

func TestLocalStorage_DeleteMissingIsNotAnError(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, s.Delete(context.Background(), "no/such/path.txt"))
}

func TestTextSource_ReadText(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	path, err := s.Upload(ctx, uuid.New(), "brief.txt", strings.NewReader("IN RE: Smith Estate"))
	require.NoError(t, err)

	source := NewTextSource(s)
	text, err := source.ReadText(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "IN RE: Smith Estate", text)

	_, err = source.ReadText(ctx, "missing.txt")
	assert.Error(t, err)
}

func TestGenerateStoragePath_Sanitizes(t *testing.T) {
	docID := uuid.New()
	path := generateStoragePath(docID, "my brief/v2.pdf")

	assert.True(t, strings.HasPrefix(path, docID.String()[:2]+"/"))
	assert.Contains(t, path, "my_brief_v2")
	assert.True(t, strings.HasSuffix(path, ".pdf"))
}
