package correction

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aoa-engine-go/pose"
)

const sampleProfile = `<?xml version="1.0"?>
<profile>
  <filter window="7" cut="0.25" distanceWindow="4" distanceCut="0.75"/>
  <pose caps="upright-rotation"/>
  <primerlist>
    <primer type="elevation"/>
    <primer type="aoa"/>
    <primer type="fov" deg="50"/>
    <primer type="backazimuth" normal="0.08" mirror="0.15" window="12" mask="true" stddev="0.3" coeff="0.4"/>
  </primerlist>
</profile>
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, sampleProfile))
	require.NoError(t, err)

	assert.Equal(t, 7, p.AngleWindow)
	assert.InDelta(t, 0.25, p.AngleCut, 1e-9)
	assert.Equal(t, 4, p.DistanceWindow)
	assert.InDelta(t, 0.75, p.DistanceCut, 1e-9)
	assert.Equal(t, pose.CapUprightRotation, p.PoseCaps)

	require.Len(t, p.Primers, 4)
	assert.Equal(t, "elevation", p.Primers[0].Type)
	assert.Equal(t, "aoa", p.Primers[1].Type)
	assert.Equal(t, "fov", p.Primers[2].Type)
	assert.InDelta(t, 50, p.Primers[2].FovDeg, 1e-9)
	ba := p.Primers[3]
	assert.InDelta(t, 0.08, ba.Normal, 1e-9)
	assert.InDelta(t, 0.15, ba.Mirror, 1e-9)
	assert.Equal(t, 12, ba.Window)
	assert.True(t, ba.Mask)
	assert.InDelta(t, 0.3, ba.StdDev, 1e-9)
	assert.InDelta(t, 0.4, ba.Coeff, 1e-9)
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.xml"))
	assert.Error(t, err)
}

func TestProfileBuildsEngine(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, sampleProfile))
	require.NoError(t, err)

	src := pose.NewApplicationSource(p.PoseCaps)
	e, err := p.NewEngine(src)
	require.NoError(t, err)
	require.NotNil(t, e)
	defer e.Close()
}

func TestProfileRejectsUnknownPrimer(t *testing.T) {
	p := DefaultProfile()
	p.Primers = append(p.Primers, PrimerConfig{Type: "bogus"})
	_, err := p.NewEngine(nil)
	assert.Error(t, err)
}

func TestProfileRejectsBadFilter(t *testing.T) {
	p := DefaultProfile()
	p.AngleWindow = 0
	_, err := p.NewEngine(nil)
	assert.Error(t, err)
}

func TestParseCapabilities(t *testing.T) {
	caps, err := ParseCapabilities("yaw-pitch-upright")
	require.NoError(t, err)
	assert.Equal(t, pose.CapYaw|pose.CapPitch|pose.CapUpright, caps)

	caps, err = ParseCapabilities("all")
	require.NoError(t, err)
	assert.Equal(t, pose.CapAll, caps)

	_, err = ParseCapabilities("sideways")
	assert.Error(t, err)
}

func TestDisabledFilterProfile(t *testing.T) {
	p, err := LoadProfile(writeProfile(t, `<profile><filter enabled="false"/></profile>`))
	require.NoError(t, err)
	assert.True(t, p.NoFilter)

	e, err := p.NewEngine(nil)
	require.NoError(t, err)
	require.NotNil(t, e)
}
