package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string
	Count int
	Tags  []string
}

func TestFrameRoundTrip(t *testing.T) {
	in := sample{Name: "gofmt", Count: 3, Tags: []string{"a", "b"}}

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, in))

	var out sample
	require.NoError(t, ReadFrame(&buf, &out))
	require.Equal(t, in, out)
}

func TestFrameDetectsTornPayload(t *testing.T) {
	in := sample{Name: "gofmt", Count: 1}

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, in))

	raw := buf.Bytes()
	// Flip a bit in the payload region (after the 9-byte header) to
	// simulate a torn write; the checksum must catch it.
	corrupted := append([]byte(nil), raw...)
	corrupted[10] ^= 0xFF

	var out sample
	err := ReadFrame(bytes.NewReader(corrupted), &out)
	require.ErrorIs(t, err, ErrChecksum)
}

func TestFrameRejectsForeignMagic(t *testing.T) {
	err := ReadFrame(bytes.NewReader([]byte("not-a-monitor-frame-at-all-")), &sample{})
	require.ErrorIs(t, err, ErrBadMagic)
}
