package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aoa-engine-go/geom"
)

func TestAoaFrameRoundTrip(t *testing.T) {
	in := geom.SphericalFromRadians(0.52, -0.13, 2.37).ToAnnotated()
	in.AzimuthFOM = 0.8
	in.ElevationFOM = 0.4
	in.DistanceFOM = 1.0

	pkt := PackAoaFrame(0xB50AC, 7, in)
	hdr, err := ParseFrameHeader(pkt)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xB50AC), hdr.Addr)
	assert.Equal(t, uint8(TypeAoaFrame), hdr.Type)
	require.Equal(t, hdr.BodyLen, len(pkt)-ArfHdrLen)

	seq, out, err := ParseAoaFrame(pkt[ArfHdrLen:])
	require.NoError(t, err)
	assert.Equal(t, uint8(7), seq)
	assert.True(t, out.IsComplete())
	// Angles are quantized to milliradians, distance to centimetres and
	// FOMs to 1/255 on the wire.
	assert.InDelta(t, in.Azimuth, out.Azimuth, 0.0005)
	assert.InDelta(t, in.Elevation, out.Elevation, 0.0005)
	assert.InDelta(t, in.Distance, out.Distance, 0.005)
	assert.InDelta(t, in.AzimuthFOM, out.AzimuthFOM, 1.0/255)
	assert.InDelta(t, in.ElevationFOM, out.ElevationFOM, 1.0/255)
	assert.InDelta(t, in.DistanceFOM, out.DistanceFOM, 1.0/255)
}

func TestAoaFramePartialMask(t *testing.T) {
	in := geom.NewAnnotated(geom.SphericalFromRadians(0.3, 0, 0), true, false, false)
	pkt := PackAoaFrame(1, 0, in)

	_, out, err := ParseAoaFrame(pkt[ArfHdrLen:])
	require.NoError(t, err)
	assert.True(t, out.HasAzimuth)
	assert.False(t, out.HasElevation)
	assert.False(t, out.HasDistance)
	assert.InDelta(t, 0.3, out.Azimuth, 0.0005)
}

func TestPoseFrameRoundTrip(t *testing.T) {
	in := geom.NewPose(
		geom.Vector3{X: 1.5, Y: -0.25, Z: 3},
		geom.YawPitchRoll(0.4, -0.1, 0.05),
	)
	pkt := PackPoseFrame(42, in)

	hdr, err := ParseFrameHeader(pkt)
	require.NoError(t, err)
	assert.Equal(t, uint8(TypePoseFrame), hdr.Type)

	out, err := ParsePoseFrame(pkt[ArfHdrLen:])
	require.NoError(t, err)
	assert.InDelta(t, in.Translation.X, out.Translation.X, 1e-6)
	assert.InDelta(t, in.Translation.Y, out.Translation.Y, 1e-6)
	assert.InDelta(t, in.Translation.Z, out.Translation.Z, 1e-6)
	assert.InDelta(t, in.Rotation.W, out.Rotation.W, 1e-6)
	assert.InDelta(t, in.Rotation.Y, out.Rotation.Y, 1e-6)
}

func TestParseFrameHeaderErrors(t *testing.T) {
	_, err := ParseFrameHeader([]byte{0x41, 0x46, 0})
	assert.Error(t, err, "truncated header")

	bad := PackAoaFrame(1, 0, geom.Annotated{})
	bad[0] = 0xFF
	_, err = ParseFrameHeader(bad)
	assert.Error(t, err, "bad magic")
}

func TestParseBodyTooShort(t *testing.T) {
	_, _, err := ParseAoaFrame(make([]byte, aoaBodyLen-1))
	assert.Error(t, err)

	_, err = ParsePoseFrame(make([]byte, poseBodyLen-1))
	assert.Error(t, err)
}
