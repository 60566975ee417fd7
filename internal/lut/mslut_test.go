package lut

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMSLUT assembles a minimal container: 48-byte header, axis
// block, then the uint8 payload.
func buildMSLUT(size int, orderFlag uint32, payload []byte) []byte {
	axisOffset := msLutHeaderLen
	dataOffset := axisOffset + size*4

	buf := make([]byte, dataOffset+len(payload))
	copy(buf, msLutMagic)
	binary.LittleEndian.PutUint32(buf[3*4:], uint32(size))
	binary.LittleEndian.PutUint32(buf[5*4:], 3)
	binary.LittleEndian.PutUint32(buf[6*4:], orderFlag)
	binary.LittleEndian.PutUint32(buf[8*4:], uint32(axisOffset))
	binary.LittleEndian.PutUint32(buf[10*4:], uint32(dataOffset))
	copy(buf[dataOffset:], payload)
	return buf
}

func TestDecodeMSLUTRGBOrder(t *testing.T) {
	payload := make([]byte, 2*2*2*3)
	payload[0], payload[1], payload[2] = 255, 128, 0 // first cell, RGB

	lat, err := DecodeMSLUT(buildMSLUT(2, 1, payload))
	require.NoError(t, err)
	assert.Equal(t, 2, lat.Size)
	assert.InDelta(t, 1.0, lat.Table[0], 1e-6)
	assert.InDelta(t, 128.0/255, lat.Table[1], 1e-6)
	assert.InDelta(t, 0.0, lat.Table[2], 1e-6)
}

// Order flag 0 means the payload's texels run blue-fastest: cell
// (r,g,b) lives at texel b + g*N + r*N². Channel bytes stay R,G,B in
// both layouts; the decoder transposes the axes, never the bytes.
func TestDecodeMSLUTBlueFastestOrder(t *testing.T) {
	payload := make([]byte, 2*2*2*3)
	// Texel 4 = r:1 g:0 b:0 in the blue-fastest layout.
	payload[4*3], payload[4*3+1], payload[4*3+2] = 200, 100, 50
	// Texel 1 = b:1.
	payload[1*3], payload[1*3+1], payload[1*3+2] = 10, 20, 30

	lat, err := DecodeMSLUT(buildMSLUT(2, 0, payload))
	require.NoError(t, err)

	// Cell (1,0,0) sits at table offset 3 in red-fastest order.
	assert.InDelta(t, 200.0/255, lat.Table[3], 1e-6)
	assert.InDelta(t, 100.0/255, lat.Table[4], 1e-6)
	assert.InDelta(t, 50.0/255, lat.Table[5], 1e-6)

	// Cell (0,0,1) sits at table offset (1*2*2)*3 = 12.
	assert.InDelta(t, 10.0/255, lat.Table[12], 1e-6)
	assert.InDelta(t, 20.0/255, lat.Table[13], 1e-6)
	assert.InDelta(t, 30.0/255, lat.Table[14], 1e-6)
}

func TestDecodeMSLUTTruncated(t *testing.T) {
	full := buildMSLUT(2, 1, make([]byte, 24))

	_, err := DecodeMSLUT(full[:len(full)-1])
	assert.Error(t, err)

	_, err = DecodeMSLUT(full[:20])
	assert.Error(t, err)

	_, err = DecodeMSLUT([]byte("NOT-A-LUT-AT-ALL-REALLY-NOT-ONE-AT-ALL-PADDING!!"))
	assert.Error(t, err)
}

func TestDecodeRawRGBA(t *testing.T) {
	data := make([]byte, 2*2*2*4)
	data[0], data[1], data[2], data[3] = 10, 20, 30, 255

	lat, err := DecodeRawRGBA(data)
	require.NoError(t, err)
	assert.Equal(t, 2, lat.Size)
	assert.InDelta(t, 10.0/255, lat.Table[0], 1e-6)
	assert.InDelta(t, 20.0/255, lat.Table[1], 1e-6)
	assert.InDelta(t, 30.0/255, lat.Table[2], 1e-6)
}

func TestDecodeRawRGBANotACube(t *testing.T) {
	_, err := DecodeRawRGBA(make([]byte, 7*4))
	assert.ErrorIs(t, err, ErrBadDimensions)

	_, err = DecodeRawRGBA(make([]byte, 6))
	assert.ErrorIs(t, err, ErrBadDimensions)
}
