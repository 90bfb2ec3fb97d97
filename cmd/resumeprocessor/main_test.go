package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-analyzer-go/internal/config"
	"resume-analyzer-go/internal/processor"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", -1))
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...(已截断，使用 --maxlen 参数显示更多)", truncate("abc", 2))
}

func TestExtractText_UnsupportedFormat(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cv.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	_, err = extractText(context.Background(), cfg, path)
	require.Error(t, err)
	assert.Equal(t, processor.KindUnsupportedFormat, processor.KindOf(err))
}

func TestExtractText_MissingFile(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	_, err = extractText(context.Background(), cfg, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorContains(t, err, "无法读取文件")
}
