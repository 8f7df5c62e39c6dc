package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCredentialIDAlphabets(t *testing.T) {
	raw := []byte{0xfb, 0xff, 0xfe, 0x01, 0x02}
	for _, encoded := range []string{
		"-__-AQI",
		"+//+AQI=",
		"+//+AQI",
		" -__-\nAQI ",
	} {
		got, err := DecodeCredentialID(encoded)
		require.NoError(t, err, encoded)
		assert.Equal(t, raw, got, encoded)
	}

	assert.Equal(t, "-__-AQI", EncodeCredentialID(raw))
}

func TestDecodeCredentialIDRejectsGarbage(t *testing.T) {
	_, err := DecodeCredentialID("")
	assert.Error(t, err)
	_, err = DecodeCredentialID("!!!")
	assert.Error(t, err)
}

func TestShortAddress(t *testing.T) {
	assert.Equal(t, "0x1234…cdef", ShortAddress("0x1234567890abcdef"))
	assert.Equal(t, "0x12", ShortAddress("0x12"))
}
