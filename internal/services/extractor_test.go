package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirehub/backend/internal/apperr"
)

func TestExtractTextPlain(t *testing.T) {
	extractor := NewExtractorService()

	text, err := extractor.ExtractText([]byte("  Ada Lovelace  \n\n\nMathematician and programmer\n"), MimePlain)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace\nMathematician and programmer", text)
}

func TestExtractTextEmptyPlainFile(t *testing.T) {
	extractor := NewExtractorService()

	for _, data := range [][]byte{nil, []byte(""), []byte("   \n\t  \n")} {
		_, err := extractor.ExtractText(data, MimePlain)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindEmptyDocument), "expected empty document error, got %v", err)
	}
}

func TestExtractTextUnsupportedFormat(t *testing.T) {
	extractor := NewExtractorService()

	_, err := extractor.ExtractText([]byte("GIF89a"), "image/gif")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnsupportedFormat))
}

func TestExtractTextDocx(t *testing.T) {
	extractor := NewExtractorService()

	doc := buildDocx(t, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Ada Lovelace</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills: Go, </w:t></w:r><w:r><w:t>Postgres</w:t></w:r></w:p>
  </w:body>
</w:document>`)

	text, err := extractor.ExtractText(doc, MimeDocx)
	require.NoError(t, err)
	assert.Contains(t, text, "Ada Lovelace")
	assert.Contains(t, text, "Skills: Go, Postgres")
}

func TestExtractTextDocxWithoutDocumentPart(t *testing.T) {
	extractor := NewExtractorService()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = extractor.ExtractText(buf.Bytes(), MimeDocx)
	assert.Error(t, err)
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestCleanText(t *testing.T) {
	got := CleanText("  line one \n\n\n line two  ")
	assert.Equal(t, "line one\nline two", got)
}
