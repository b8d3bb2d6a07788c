package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorsMatchInfo(t *testing.T) {
	v, c, d := Info()

	assert.NotEmpty(t, v)
	assert.Equal(t, v, GetVersion())
	assert.Equal(t, c, GetCommit())
	assert.Equal(t, d, GetDate())
}

func TestString(t *testing.T) {
	original := version
	version = "v9.9.9"
	t.Cleanup(func() { version = original })

	s := String()
	assert.Contains(t, s, "version=v9.9.9")
	assert.Contains(t, s, "commit=")
	assert.Contains(t, s, "date=")
}
