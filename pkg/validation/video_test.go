package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVideoURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/watch?v=abc123",
		"https://m.youtube.com/watch?v=abc123",
		"https://youtu.be/dQw4w9WgXcQ",
		"http://youtu.be/a_b-C9",
		"",
		"   ",
	}
	for _, raw := range valid {
		assert.NoError(t, ValidateVideoURL(raw), "expected %q to be accepted", raw)
	}

	invalid := []string{
		"https://vimeo.com/123456",
		"https://example.com/watch?v=abc",
		"https://notyoutube.com/watch?v=abc",
		"https://youtube.com.evil.com/watch?v=abc",
		"ftp://youtube.com/watch?v=abc",
		"https://youtu.be/abc/def",
		"https://youtu.be/",
	}
	for _, raw := range invalid {
		assert.Error(t, ValidateVideoURL(raw), "expected %q to be rejected", raw)
	}
}
