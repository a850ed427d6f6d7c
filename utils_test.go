package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURL(t *testing.T) {
	mt, data, err := decodeDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)
	assert.Equal(t, []byte("hello"), data)

	mt, data, err = decodeDataURL("data:,a%20b")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mt)
	assert.Equal(t, []byte("a b"), data)

	for _, bad := range []string{"http://x/y.png", "data:image/png;base64", "data:image/png;base64,@@@"} {
		_, _, err := decodeDataURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestEncodeDataURLRoundTrip(t *testing.T) {
	url := encodeDataURL("image/gif", []byte{1, 2, 3})
	mt, data, err := decodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", mt)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, "gif", imageExtension(mt))
	assert.Equal(t, "png", imageExtension("image/webp"))
}

func TestAlphanumeric(t *testing.T) {
	assert.Equal(t, "abc123", alphanumeric(" a-b_c 1.2/3 "))
	assert.Equal(t, "", alphanumeric("日本語"))
}
