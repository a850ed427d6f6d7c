package main

import (
	"encoding/base64"
	"net/url"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// decodeDataURL splits a data: URL into its media type and payload.
func decodeDataURL(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, errors.New("not a data URL")
	}
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return "", nil, errors.New("malformed data URL")
	}
	meta, payload := s[len("data:"):comma], s[comma+1:]
	mediaType := meta
	isBase64 := false
	if strings.HasSuffix(meta, ";base64") {
		mediaType = strings.TrimSuffix(meta, ";base64")
		isBase64 = true
	}
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, errors.Wrap(err, "unescape data URL")
		}
		return mediaType, []byte(text), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, errors.Wrap(err, "decode data URL")
	}
	return mediaType, data, nil
}

func encodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func imageExtension(mediaType string) string {
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

func alphanumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
