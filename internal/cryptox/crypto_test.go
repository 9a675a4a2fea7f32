package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestDigestReader(t *testing.T) {
	got, err := DigestReader(strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Len(t, got, 64)
	assert.Equal(t, DigestBytes([]byte("hello")), got)
	assert.NotEqual(t, DigestBytes([]byte("hello!")), got)
}

func TestDigestReader_Error(t *testing.T) {
	_, err := DigestReader(failingReader{})
	require.Error(t, err)
}

func TestDigestBytes_Empty(t *testing.T) {
	// BLAKE2b-256 of the empty input.
	assert.Equal(t, "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8", DigestBytes(nil))
}
