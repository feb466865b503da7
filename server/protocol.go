package server

import (
	"encoding/binary"
	"fmt"
	"math"

	"aoa-engine-go/geom"
)

const (
	ArfMagic  = 0x4641 // Little Endian for 'A' 'F'
	ArfHdrLen = 8

	TypeAoaFrame  = 0x21
	TypePoseFrame = 0x31

	aoaBodyLen  = 12
	poseBodyLen = 28

	// Field mask bits in an AoA frame body.
	maskAzimuth   = 0x01
	maskElevation = 0x02
	maskDistance  = 0x04
)

type FrameHeader struct {
	Magic   uint16
	Addr    uint32
	Type    uint8
	BodyLen int
}

// ParseFrameHeader parses the ARF header from the beginning of the packet.
func ParseFrameHeader(data []byte) (*FrameHeader, error) {
	if len(data) < ArfHdrLen {
		return nil, fmt.Errorf("packet too short")
	}

	magic := binary.LittleEndian.Uint16(data[0:2])
	if magic != ArfMagic {
		return nil, fmt.Errorf("invalid magic: 0x%x", magic)
	}

	return &FrameHeader{
		Magic:   magic,
		Addr:    binary.LittleEndian.Uint32(data[2:6]),
		Type:    data[6],
		BodyLen: int(data[7]),
	}, nil
}

// ParseAoaFrame decodes an AoA measurement body:
//
//	seq(1) mask(1) az_mrad(2) el_mrad(2) dist_cm(2) azFom(1) elFom(1) distFom(1) rsvd(1)
//
// Angles are signed milliradians, distance is unsigned centimetres, and each
// FOM byte maps 0..255 onto 0..1.
func ParseAoaFrame(body []byte) (uint8, geom.Annotated, error) {
	if len(body) < aoaBodyLen {
		return 0, geom.Annotated{}, fmt.Errorf("aoa frame too short")
	}

	seq := body[0]
	mask := body[1]
	az := float64(int16(binary.LittleEndian.Uint16(body[2:4]))) / 1000.0
	el := float64(int16(binary.LittleEndian.Uint16(body[4:6]))) / 1000.0
	dist := float64(binary.LittleEndian.Uint16(body[6:8])) / 100.0

	reading := geom.NewAnnotated(
		geom.SphericalFromRadians(az, el, dist),
		mask&maskAzimuth != 0,
		mask&maskElevation != 0,
		mask&maskDistance != 0,
	)
	reading.AzimuthFOM = float64(body[8]) / 255.0
	reading.ElevationFOM = float64(body[9]) / 255.0
	reading.DistanceFOM = float64(body[10]) / 255.0
	return seq, reading, nil
}

// ParsePoseFrame decodes a device pose body: 7 little-endian float32 values
// qx qy qz qw tx ty tz.
func ParsePoseFrame(body []byte) (geom.Pose, error) {
	if len(body) < poseBodyLen {
		return geom.Pose{}, fmt.Errorf("pose frame too short")
	}

	f := make([]float64, 7)
	for i := range f {
		f[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(body[i*4 : i*4+4])))
	}

	return geom.NewPose(
		geom.Vector3{X: f[4], Y: f[5], Z: f[6]},
		geom.NewQuaternion(f[0], f[1], f[2], f[3]),
	), nil
}

// PackAoaFrame builds a complete packet (header plus body) carrying the
// reading. The inverse of ParseFrameHeader + ParseAoaFrame; used by the
// simulator and by tests.
func PackAoaFrame(addr uint32, seq uint8, reading geom.Annotated) []byte {
	b := make([]byte, ArfHdrLen+aoaBodyLen)
	packHeader(b, addr, TypeAoaFrame, aoaBodyLen)

	body := b[ArfHdrLen:]
	body[0] = seq
	mask := uint8(0)
	if reading.HasAzimuth {
		mask |= maskAzimuth
	}
	if reading.HasElevation {
		mask |= maskElevation
	}
	if reading.HasDistance {
		mask |= maskDistance
	}
	body[1] = mask
	binary.LittleEndian.PutUint16(body[2:4], uint16(int16(math.Round(reading.Azimuth*1000))))
	binary.LittleEndian.PutUint16(body[4:6], uint16(int16(math.Round(reading.Elevation*1000))))
	binary.LittleEndian.PutUint16(body[6:8], uint16(math.Round(reading.Distance*100)))
	body[8] = fomByte(reading.AzimuthFOM)
	body[9] = fomByte(reading.ElevationFOM)
	body[10] = fomByte(reading.DistanceFOM)
	return b
}

// PackPoseFrame builds a complete packet carrying the pose.
func PackPoseFrame(addr uint32, p geom.Pose) []byte {
	b := make([]byte, ArfHdrLen+poseBodyLen)
	packHeader(b, addr, TypePoseFrame, poseBodyLen)

	body := b[ArfHdrLen:]
	f := [7]float64{
		p.Rotation.X, p.Rotation.Y, p.Rotation.Z, p.Rotation.W,
		p.Translation.X, p.Translation.Y, p.Translation.Z,
	}
	for i, v := range f {
		binary.LittleEndian.PutUint32(body[i*4:i*4+4], math.Float32bits(float32(v)))
	}
	return b
}

func packHeader(b []byte, addr uint32, typ uint8, bodyLen int) {
	binary.LittleEndian.PutUint16(b[0:2], ArfMagic)
	binary.LittleEndian.PutUint32(b[2:6], addr)
	b[6] = typ
	b[7] = uint8(bodyLen)
}

func fomByte(fom float64) uint8 {
	return uint8(math.Round(geom.Clamp(fom, 0, 1) * 255))
}
