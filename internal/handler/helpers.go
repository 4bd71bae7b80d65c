package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

// errNotText indicates an upload is not a text document.
var errNotText = errors.New("upload is not a text file")

// readUpload reads a multipart file as UTF-8 text. Only text-like uploads are
// accepted; binary documents are rejected rather than mangled.
func readUpload(header *multipart.FileHeader, maxBytes int64) (string, error) {
	if maxBytes > 0 && header.Size > maxBytes {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", header.Filename, maxBytes)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", header.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", header.Filename, err)
	}

	if !isTextContent(data) {
		return "", fmt.Errorf("%w: %s", errNotText, header.Filename)
	}

	return string(data), nil
}

// isTextContent walks the detected MIME hierarchy looking for text/plain.
func isTextContent(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	for mtype := mimetype.Detect(data); mtype != nil; mtype = mtype.Parent() {
		if mtype.Is("text/plain") {
			return true
		}
	}
	return false
}

// formTextOrFile resolves a value that may arrive as a form field or as an
// uploaded text file. The form field wins when both are present.
func formTextOrFile(c *fiber.Ctx, field, fileField string, maxBytes int64) (string, error) {
	if value := strings.TrimSpace(c.FormValue(field)); value != "" {
		return value, nil
	}

	header, err := c.FormFile(fileField)
	if err != nil {
		return "", nil // neither supplied
	}
	return readUpload(header, maxBytes)
}
