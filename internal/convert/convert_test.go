package convert

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/sdf2bsdf/internal/bsdf"
	"hstin/sdf2bsdf/internal/config"
	"hstin/sdf2bsdf/parser"
)

func sdf(values func(k int) int) string {
	var b strings.Builder
	b.WriteString("75\n40\n74\n41\n")
	for k := 0; k < config.GridCells; k++ {
		b.WriteString(strconv.Itoa(values(k)))
		b.WriteByte('\n')
	}
	return b.String()
}

func trailer(out []byte) (int16, int16) {
	base := config.GridCells * 2
	return int16(binary.LittleEndian.Uint16(out[base:])), int16(binary.LittleEndian.Uint16(out[base+2:]))
}

func TestConvert_FirstSampleAndTrailer(t *testing.T) {
	input := sdf(func(k int) int {
		if k == 0 {
			return 100
		}
		return 0
	})

	var out bytes.Buffer
	_, err := Convert(strings.NewReader(input), &out)
	require.NoError(t, err)

	b := out.Bytes()
	require.Len(t, b, config.OutputSize)
	assert.Equal(t, int16(100), int16(binary.LittleEndian.Uint16(b[0:2])))

	min, max := trailer(b)
	assert.Equal(t, int16(0), min)
	assert.Equal(t, int16(100), max)
}

func TestConvert_AllEqual(t *testing.T) {
	var out bytes.Buffer
	grid, err := Convert(strings.NewReader(sdf(func(int) int { return -17 })), &out)
	require.NoError(t, err)

	min, max := trailer(out.Bytes())
	assert.Equal(t, int16(-17), min)
	assert.Equal(t, int16(-17), max)
	assert.Equal(t, grid.Stats.Min, min)
}

func TestConvert_RoundTrip(t *testing.T) {
	value := func(k int) int { return (k*31)%65536 - 32768 }

	var out bytes.Buffer
	_, err := Convert(strings.NewReader(sdf(value)), &out)
	require.NoError(t, err)

	decoded, err := bsdf.Read(&out)
	require.NoError(t, err)

	trueMin, trueMax := int16(32767), int16(-32768)
	for k := 0; k < config.GridCells; k++ {
		want := int16(value(k))
		x, y := k/config.GridSize, k%config.GridSize
		if decoded.GetData(x, y) != want {
			t.Fatalf("sample %d: got %d, want %d", k, decoded.GetData(x, y), want)
		}
		trueMin = min(trueMin, want)
		trueMax = max(trueMax, want)
	}
	assert.Equal(t, trueMin, decoded.Stats.Min)
	assert.Equal(t, trueMax, decoded.Stats.Max)
}

func TestConvert_ParseErrorWritesNothing(t *testing.T) {
	input := "h\nh\nh\nh\n1\n2\nabc\n3\n"

	var out bytes.Buffer
	_, err := Convert(strings.NewReader(input), &out)

	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 7, perr.Line)
	assert.Zero(t, out.Len())
}

func TestConvert_Flushes(t *testing.T) {
	w := &recordingWriter{}
	_, err := Convert(strings.NewReader("h\nh\nh\nh\n5\n"), w)
	require.NoError(t, err)
	assert.Equal(t, config.OutputSize, w.n)
}

type recordingWriter struct{ n int }

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.n += len(p)
	return len(p), nil
}
