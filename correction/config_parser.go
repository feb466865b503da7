package correction

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"aoa-engine-go/filtering"
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
	"aoa-engine-go/primers"
)

// PrimerConfig describes one primer chain entry in a profile.
type PrimerConfig struct {
	Type string

	// FovDeg applies to "fov" primers.
	FovDeg float64

	// The rest applies to "backazimuth" primers.
	Normal float64
	Mirror float64
	Window int
	Mask   bool
	StdDev float64
	Coeff  float64
}

// Profile is a tuning profile for building engines, typically loaded from
// a profile.xml. One profile serves every tag the server tracks.
type Profile struct {
	// Angle and distance streams are filtered separately because their
	// noise profiles differ.
	AngleWindow    int
	AngleCut       float64
	DistanceWindow int
	DistanceCut    float64

	// NoFilter disables position filtering entirely (raw primed output).
	NoFilter bool

	PoseCaps pose.Capability
	Primers  []PrimerConfig
}

// DefaultProfile is the tuning used when no profile file is given:
// moderate smoothing, the full primer chain, and an upright rotation-only
// pose feed.
func DefaultProfile() Profile {
	return Profile{
		AngleWindow:    10,
		AngleCut:       0.5,
		DistanceWindow: 6,
		DistanceCut:    0.6,
		PoseCaps:       pose.CapUprightRotation,
		Primers: []PrimerConfig{
			{Type: "elevation"},
			{Type: "aoa"},
			{Type: "fov", FovDeg: 60},
			{Type: "backazimuth", Normal: 0.1, Mirror: 0.12, Window: 10,
				Mask: true, StdDev: 0.35, Coeff: 0.45},
		},
	}
}

// LoadProfile reads a profile XML file. Elements and attributes not
// recognized are ignored so profiles can carry extra tooling data.
//
//	<profile>
//	  <filter window="10" cut="0.5" distanceWindow="6" distanceCut="0.6"/>
//	  <pose caps="upright-rotation"/>
//	  <primerlist>
//	    <primer type="elevation"/>
//	    <primer type="aoa"/>
//	    <primer type="fov" deg="60"/>
//	    <primer type="backazimuth" normal="0.1" mirror="0.12" window="10"
//	            mask="true" stddev="0.35" coeff="0.45"/>
//	  </primerlist>
//	</profile>
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	p.Primers = nil

	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	inPrimerList := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return p, fmt.Errorf("parse profile %s: %w", path, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "filter":
				if v, ok := intAttr(t, "window"); ok {
					p.AngleWindow = v
				}
				if v, ok := floatAttr(t, "cut"); ok {
					p.AngleCut = v
				}
				if v, ok := intAttr(t, "distanceWindow"); ok {
					p.DistanceWindow = v
				}
				if v, ok := floatAttr(t, "distanceCut"); ok {
					p.DistanceCut = v
				}
				if v, ok := attrValue(t, "enabled"); ok {
					p.NoFilter = v == "false"
				}
			case "pose":
				if v, ok := attrValue(t, "caps"); ok {
					caps, err := ParseCapabilities(v)
					if err != nil {
						return p, err
					}
					p.PoseCaps = caps
				}
			case "primerlist":
				inPrimerList = true
			case "primer":
				if !inPrimerList {
					continue
				}
				pc := PrimerConfig{}
				pc.Type, _ = attrValue(t, "type")
				pc.FovDeg, _ = floatAttr(t, "deg")
				pc.Normal, _ = floatAttr(t, "normal")
				pc.Mirror, _ = floatAttr(t, "mirror")
				pc.Window, _ = intAttr(t, "window")
				if v, ok := attrValue(t, "mask"); ok {
					pc.Mask = v == "true"
				}
				pc.StdDev, _ = floatAttr(t, "stddev")
				pc.Coeff, _ = floatAttr(t, "coeff")
				p.Primers = append(p.Primers, pc)
			}
		case xml.EndElement:
			if t.Name.Local == "primerlist" {
				inPrimerList = false
			}
		}
	}
	return p, nil
}

// ParseCapabilities parses a dash-separated capability list, e.g.
// "upright-rotation" or "yaw-pitch-upright" or "all".
func ParseCapabilities(s string) (pose.Capability, error) {
	caps := pose.CapNone
	for _, part := range strings.Split(s, "-") {
		switch part {
		case "yaw":
			caps |= pose.CapYaw
		case "pitch":
			caps |= pose.CapPitch
		case "roll":
			caps |= pose.CapRoll
		case "rotation":
			caps |= pose.CapRotation
		case "translation":
			caps |= pose.CapTranslation
		case "upright":
			caps |= pose.CapUpright
		case "all":
			caps |= pose.CapAll
		case "none", "":
		default:
			return caps, fmt.Errorf("unknown pose capability %q", part)
		}
	}
	return caps, nil
}

// NewEngine assembles an engine from the profile, bound to the given pose
// source. A nil source disables pose processing regardless of profile.
func (p Profile) NewEngine(src pose.Source) (*Engine, error) {
	cfg := Config{PoseSource: src}

	for _, pc := range p.Primers {
		switch pc.Type {
		case "elevation":
			cfg.Primers = append(cfg.Primers, primers.NewElevationPrimer())
		case "aoa":
			cfg.Primers = append(cfg.Primers, primers.NewAoaPrimer())
		case "fov":
			cfg.Primers = append(cfg.Primers, primers.NewFovPrimer(geom.Radians(pc.FovDeg)))
		case "backazimuth":
			cfg.Primers = append(cfg.Primers, primers.NewBackAzimuthPrimer(
				pc.Normal, pc.Mirror, pc.Window, pc.Mask, pc.StdDev, pc.Coeff))
		default:
			return nil, fmt.Errorf("unknown primer type %q", pc.Type)
		}
	}

	if !p.NoFilter {
		// The angle axes live on a circle, so they get rotation filters;
		// a linear filter would average +179 and -179 degrees to zero.
		az, err := filtering.NewMedAvgRotationFilter(p.AngleWindow, p.AngleCut)
		if err != nil {
			return nil, fmt.Errorf("azimuth filter: %w", err)
		}
		el, err := filtering.NewMedAvgRotationFilter(p.AngleWindow, p.AngleCut)
		if err != nil {
			return nil, fmt.Errorf("elevation filter: %w", err)
		}
		dist, err := filtering.NewMedAvgFilter(p.DistanceWindow, p.DistanceCut)
		if err != nil {
			return nil, fmt.Errorf("distance filter: %w", err)
		}
		cfg.Filter = filtering.NewSphericalFilter(az, el, dist)
	}

	return NewEngine(cfg), nil
}

func attrValue(e xml.StartElement, name string) (string, bool) {
	for _, a := range e.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func intAttr(e xml.StartElement, name string) (int, bool) {
	s, ok := attrValue(e, name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func floatAttr(e xml.StartElement, name string) (float64, bool) {
	s, ok := attrValue(e, name)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
