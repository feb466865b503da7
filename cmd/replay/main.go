package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"aoa-engine-go/binlog"
	"aoa-engine-go/correction"
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
	"aoa-engine-go/server"
)

// Replays a capture file offline through the correction pipeline and dumps
// per-tag CSV traces for tuning work.
func main() {
	pcapPath := flag.String("pcap", "", "Input capture file")
	profilePath := flag.String("profile", "", "Path to profile.xml (empty uses built-in defaults)")
	outPath := flag.String("out", "corrected.csv", "Output CSV path (directory when -all)")
	tagHex := flag.String("tag", "", "Tag address in hex; empty with -all unset processes the first tag seen")
	allTags := flag.Bool("all", false, "Write one CSV per tag in the capture")
	flag.Parse()

	if *pcapPath == "" {
		fmt.Println("--pcap required")
		os.Exit(1)
	}

	profile := correction.DefaultProfile()
	if *profilePath != "" {
		p, err := correction.LoadProfile(*profilePath)
		if err != nil {
			log.Fatalf("load profile: %v", err)
		}
		profile = p
	}

	var onlyTag uint32
	haveFilter := false
	if *tagHex != "" {
		v, err := strconv.ParseUint(*tagHex, 16, 32)
		if err != nil {
			log.Fatalf("invalid tag %q: %v", *tagHex, err)
		}
		onlyTag = uint32(v)
		haveFilter = true
	}

	rd, err := binlog.OpenFile(*pcapPath)
	if err != nil {
		log.Fatalf("open capture: %v", err)
	}
	defer rd.Close()

	poseSource := pose.NewApplicationSource(profile.PoseCaps)
	engines := make(map[uint32]*correction.Engine)
	rows := make(map[uint32][][]string)

	engineFor := func(tagID uint32) *correction.Engine {
		if e, ok := engines[tagID]; ok {
			return e
		}
		e, err := profile.NewEngine(poseSource)
		if err != nil {
			log.Fatalf("build engine: %v", err)
		}
		engines[tagID] = e
		return e
	}

	recCount := 0
	for {
		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("read capture: %v", err)
		}
		if rec.Flag&binlog.FlagMeta != 0 {
			continue
		}
		recCount++

		// A record may hold several frames back to back.
		data := rec.Payload
		offset := 0
		for offset < len(data) {
			if len(data)-offset < server.ArfHdrLen {
				break
			}
			hdr, err := server.ParseFrameHeader(data[offset:])
			if err != nil {
				offset++
				continue
			}
			totalLen := server.ArfHdrLen + hdr.BodyLen
			if offset+totalLen > len(data) {
				break
			}
			body := data[offset+server.ArfHdrLen : offset+totalLen]
			offset += totalLen

			switch hdr.Type {
			case server.TypePoseFrame:
				if p, err := server.ParsePoseFrame(body); err == nil {
					poseSource.ApplyPose(p)
				}
			case server.TypeAoaFrame:
				if haveFilter && hdr.Addr != onlyTag {
					continue
				}
				if !*allTags && !haveFilter {
					// Lock onto the first tag seen.
					onlyTag = hdr.Addr
					haveFilter = true
				}
				_, reading, err := server.ParseAoaFrame(body)
				if err != nil {
					continue
				}
				e := engineFor(hdr.Addr)
				e.Add(reading, rec.TimeMs)
				if out, ok := e.Compute(rec.TimeMs); ok {
					rows[hdr.Addr] = append(rows[hdr.Addr], []string{
						strconv.FormatInt(rec.TimeMs, 10),
						fmt.Sprintf("%.3f", geom.Degrees(out.Azimuth)),
						fmt.Sprintf("%.3f", geom.Degrees(out.Elevation)),
						fmt.Sprintf("%.3f", out.Distance),
					})
				}
			}
		}
	}

	for _, e := range engines {
		e.Close()
	}

	if len(rows) == 0 {
		log.Fatalf("no matching frames in %s (%d records)", *pcapPath, recCount)
	}

	for tagID, tagRows := range rows {
		path := *outPath
		if *allTags {
			path = filepath.Join(*outPath, fmt.Sprintf("tag_%X.csv", tagID))
		}
		if err := writeCSV(path, tagRows); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("tag %X: %d rows -> %s", tagID, len(tagRows), path)
	}
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ts_ms", "azimuth_deg", "elevation_deg", "distance_m"}); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
