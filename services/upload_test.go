package services

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(10 * 1024 * 1024)
	require.NoError(t, err)
	return form.File["file"][0]
}

func TestValidateOrderUpload(t *testing.T) {
	t.Run("Valid PDF", func(t *testing.T) {
		content := append([]byte("%PDF-1.4\n"), make([]byte, 100)...)
		contentType, err := ValidateOrderUpload(createMockFileHeader(t, "order.pdf", content))
		assert.NoError(t, err)
		assert.Equal(t, "application/pdf", contentType)
	})

	t.Run("Valid PNG", func(t *testing.T) {
		content := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 100)...)
		contentType, err := ValidateOrderUpload(createMockFileHeader(t, "scan.PNG", content))
		assert.NoError(t, err)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("Fake PDF", func(t *testing.T) {
		_, err := ValidateOrderUpload(createMockFileHeader(t, "order.pdf", []byte("not a pdf at all")))
		assert.Error(t, err)
	})

	t.Run("Disallowed extension", func(t *testing.T) {
		_, err := ValidateOrderUpload(createMockFileHeader(t, "payload.exe", []byte("MZ")))
		assert.Error(t, err)
	})

	t.Run("Too large", func(t *testing.T) {
		fh := createMockFileHeader(t, "order.txt", []byte("x"))
		fh.Size = MaxUploadSize + 1
		_, err := ValidateOrderUpload(fh)
		assert.Error(t, err)
	})
}
