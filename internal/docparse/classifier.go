package docparse

import (
	"bytes"
	"mime"
	"strings"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
}

var spreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// Classify assigns a processing category from the filename, the declared
// content type and the leading bytes of the document itself.
func Classify(content []byte, filename, declaredContentType string) DocumentType {
	ext := extensionOf(filename)

	mimeType := declaredContentType
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	switch {
	case imageExtensions[ext]:
		return DocumentType{Category: CategoryImage, MIMEType: mimeType, Extension: ext}
	case ext == ".pdf":
		if pdfHasSelectableText(content) {
			return DocumentType{Category: CategoryPDFNative, MIMEType: mimeType, Extension: ext, HasText: true}
		}
		return DocumentType{Category: CategoryPDFScanned, MIMEType: mimeType, Extension: ext}
	case ext == ".docx":
		return DocumentType{Category: CategoryDOCX, MIMEType: mimeType, Extension: ext, HasText: true}
	case spreadsheetExtensions[ext]:
		return DocumentType{Category: CategoryXLSX, MIMEType: mimeType, Extension: ext, HasText: true}
	default:
		return DocumentType{Category: CategoryUnknown, MIMEType: mimeType, Extension: ext}
	}
}

func extensionOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i:])
}

// pdfTextMarkers are structural tokens that text-bearing PDF pages carry:
// the page object type, the text-block operators and a font resource.
var pdfTextMarkers = [][]byte{
	[]byte("/Type /Page"),
	[]byte("BT"),
	[]byte("ET"),
	[]byte("/Font"),
}

// pdfScanWindow bounds the marker scan. Scanning only the head of the
// file is a cheap proxy for a real parse; hybrid documents with a scanned
// cover page can be misclassified and that trade-off is accepted.
const pdfScanWindow = 50000

func pdfHasSelectableText(content []byte) bool {
	head := content
	if len(head) > pdfScanWindow {
		head = head[:pdfScanWindow]
	}
	found := 0
	for _, marker := range pdfTextMarkers {
		if bytes.Contains(head, marker) {
			found++
		}
	}
	return found >= 2
}
