package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentPath(t *testing.T) {
	assert.Equal(t, "/rec/out.wav", segmentPath("/rec/out.wav", 1))
	assert.Equal(t, "/rec/out_002.wav", segmentPath("/rec/out.wav", 2))
	assert.Equal(t, "/rec/out_015.wav", segmentPath("/rec/out.wav", 15))
}

func TestSanitizeForFilename(t *testing.T) {
	assert.Equal(t, "alsa_input_usb-mic", sanitizeForFilename("alsa_input.usb-mic"))
	assert.Equal(t, "my_device__1_", sanitizeForFilename("my device (1)"))
}
