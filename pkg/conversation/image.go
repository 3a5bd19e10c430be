package conversation

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Image is an inline image payload.
type Image struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	DataURL  string `json:"data_url"` // data:<mime>;base64,<payload>
	Size     int    `json:"size"`     // decoded size in bytes
}

// LoadImage reads the file at path and encodes it as a data URL. The content is
// not validated; the MIME type is sniffed from the bytes, then the extension.
func LoadImage(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	mimeType := sniffMIMEType(path, data)

	return &Image{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		DataURL:  "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Size:     len(data),
	}, nil
}

func sniffMIMEType(path string, data []byte) string {
	detected := http.DetectContentType(data)
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		detected = mediaType
	}
	if detected != "application/octet-stream" && !strings.HasPrefix(detected, "text/") {
		return detected
	}

	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}

	return detected
}

func (img *Image) clone() *Image {
	if img == nil {
		return nil
	}
	c := *img
	return &c
}
