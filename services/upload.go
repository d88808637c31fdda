package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

const MaxUploadSize = 10 * 1024 * 1024 // 10MB

var allowedOrderExtensions = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ValidateOrderUpload checks a court order attachment's size and type and
// returns the content type to store it under
func ValidateOrderUpload(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > MaxUploadSize {
		return "", fmt.Errorf("file size exceeds maximum allowed size of 10MB")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := allowedOrderExtensions[ext]
	if !ok {
		return "", fmt.Errorf("file type not allowed. Accepted formats: PDF, DOC, DOCX, TXT, JPG, PNG")
	}

	// PDFs are sniffed since they are the usual carrier of signed orders
	if ext == ".pdf" {
		f, err := fileHeader.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open uploaded file: %w", err)
		}
		defer f.Close()

		head := make([]byte, 512)
		n, err := f.Read(head)
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("failed to read file content: %w", err)
		}
		if n < 4 || string(head[:4]) != "%PDF" || http.DetectContentType(head[:n]) != "application/pdf" {
			return "", fmt.Errorf("file is not a valid PDF")
		}
	}
	return contentType, nil
}
