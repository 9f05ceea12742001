package photostore

import "net/http"

// imageTypes are the sniffed content types accepted as photos. WebP is
// checked separately: http.DetectContentType has no WebP signature.
var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// DetectImageMIME sniffs data and returns its MIME type when it is an accepted
// image format.
func DetectImageMIME(data []byte) (string, bool) {
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if imageTypes[mime] {
		return mime, true
	}
	return "", false
}
