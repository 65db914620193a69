package respbuild

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sensorhub/sensor"
)

func TestStatus(t *testing.T) {
	buf := make([]byte, 16)
	n := Status(buf, 0x01, 0x40, 3, StatusOK)
	require.Equal(t, 7, n)
	require.Equal(t, []byte{SOFMarker, 0x01, 0x40, 3, StatusOK, 0}, buf[:6])
	require.Equal(t, checksum(buf[:6]), buf[6])
}

func TestField(t *testing.T) {
	buf := make([]byte, 16)
	n := Field(buf, 0x01, 0x40, 30, StatusOK, 0x05)
	require.Equal(t, 8, n)
	require.Equal(t, byte(0x05), buf[6])
	require.Equal(t, checksum(buf[:7]), buf[7])
}

func TestList_EmptyErrors(t *testing.T) {
	buf := make([]byte, 32)
	require.Equal(t, 0, List(buf, 0x01, 0, 4, StatusOK, nil, 8))
}

func TestList_TooManyErrors(t *testing.T) {
	buf := make([]byte, 64)
	pairs := make([][2]byte, 9)
	require.Equal(t, 0, List(buf, 0x01, 0, 4, StatusOK, pairs, 8))
}

func TestList_RoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	pairs := [][2]byte{{1, 0x40}, {1, 0x41}}
	n := List(buf, 0x01, 0, 4, StatusOK, pairs, 8)
	require.Equal(t, 6+4+1, n)
	require.Equal(t, byte(4), buf[5]) // length = 2*count
	require.Equal(t, []byte{1, 0x40, 1, 0x41}, buf[6:10])
}

func TestPayload_RejectsOutOfRange(t *testing.T) {
	buf := make([]byte, 512)
	require.Equal(t, 0, Payload(buf, 0x01, 0x40, 7, StatusOK, nil))
	require.Equal(t, 0, Payload(buf, 0x01, 0x40, 7, StatusOK, make([]byte, 256)))
}

func TestSamples_RoundTrip(t *testing.T) {
	buf := make([]byte, 256)
	s1 := sensor.Sample{TickMs: 1000, Len: 2}
	s1.Bytes[0], s1.Bytes[1] = 0xAB, 0xCD
	s2 := sensor.Sample{TickMs: 1100, Len: 2}
	s2.Bytes[0], s2.Bytes[1] = 0x01, 0x02

	n := Samples(buf, 0x01, 0x40, 0, StatusOK, []sensor.Sample{s1, s2}, 2)
	require.Equal(t, 6+2*(4+2)+1, n)

	// First sample's tick, big-endian.
	require.Equal(t, []byte{0x00, 0x00, 0x03, 0xE8}, buf[6:10])
	require.Equal(t, []byte{0xAB, 0xCD}, buf[10:12])
}

func TestSamples_RejectsOversizedSample(t *testing.T) {
	buf := make([]byte, 256)
	s := sensor.Sample{Len: 4}
	require.Equal(t, 0, Samples(buf, 0x01, 0x40, 0, StatusOK, []sensor.Sample{s}, 2))
}

func TestStatusCodesMatchWireContract(t *testing.T) {
	require.Equal(t, byte(0), StatusOK)
	require.Equal(t, byte(1), StatusError)
	require.Equal(t, byte(2), StatusNotFound)
	require.Equal(t, byte(3), StatusUnknownCmd)
}
