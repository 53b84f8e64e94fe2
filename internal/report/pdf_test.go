package report

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteRequiresAnalysis(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(&buf, Input{AIText: " \n\t", Bullets: []string{"x"}})
	require.ErrorIs(t, err, ErrNoAnalysis)
	require.Zero(t, buf.Len())
}

func TestBytesProducesPDF(t *testing.T) {
	b, res, err := Bytes(Input{
		AIText:  "Engagement is concentrated on Instagram.\n\n1. Post more video.",
		Bullets: []string{"Sentiment 'Positive' is the most dominant."},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	require.Zero(t, res.Replaced)
	require.NoError(t, res.Lossy())
}

func TestNonLatin1Replaced(t *testing.T) {
	_, res, err := Bytes(Input{AIText: "Great results \U0001F680 \u2014 keep going"})
	require.NoError(t, err)
	// the rocket and the em dash
	require.Equal(t, 2, res.Replaced)

	var ee *EncodingError
	require.True(t, errors.As(res.Lossy(), &ee))
	require.Equal(t, 2, ee.Replaced)
}

func TestLatin1(t *testing.T) {
	out, n := latin1("café ©")
	require.Zero(t, n)
	require.Equal(t, []byte{'c', 'a', 'f', 0xE9, ' ', 0xA9}, []byte(out))

	out, n = latin1("日本")
	require.Equal(t, 2, n)
	require.Equal(t, "??", out)
}
