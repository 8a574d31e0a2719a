package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeToken(t *testing.T) {
	occurredAt := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	createdAt := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	token := EncodeToken(occurredAt, createdAt)
	assert.NotEmpty(t, token)

	gotOccurred, gotCreated, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.True(t, occurredAt.Equal(gotOccurred))
	assert.True(t, createdAt.Equal(gotCreated))
}

func TestDecodeToken_InvalidBase64(t *testing.T) {
	_, _, err := DecodeToken("not-base64!!!")
	assert.Error(t, err)
}

func TestDecodeToken_MissingSeparator(t *testing.T) {
	_, _, err := DecodeToken("aGVsbG8=") // "hello", no separator
	assert.Error(t, err)
}

func TestDecodeToken_BadTimestamps(t *testing.T) {
	_, _, err := DecodeToken("bm90YXxkYXRl") // "nota|date"
	assert.Error(t, err)
}
