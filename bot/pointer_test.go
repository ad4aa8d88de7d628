package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointerRoundTrip(t *testing.T) {
	p := encodePointer(-1001234567890, 42)
	assert.Equal(t, "-1001234567890:42", p)

	chatID, messageID, err := decodePointer(p)
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234567890), chatID)
	assert.Equal(t, 42, messageID)
}

func TestDecodePointerRejectsGarbage(t *testing.T) {
	for _, p := range []string{"", "42", "abc:1", "1:abc", ":"} {
		_, _, err := decodePointer(p)
		assert.Error(t, err, "pointer %q", p)
	}
}
