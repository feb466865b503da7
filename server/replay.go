package server

import (
	"io"
	"log"
	"time"

	"aoa-engine-go/binlog"
)

// Replay feeds a capture file through the server as if the datagrams were
// arriving live. speed scales the original packet timing; 0 replays as fast
// as possible.
func (s *UdpServer) Replay(path string, speed float64) error {
	rd, err := binlog.OpenFile(path)
	if err != nil {
		return err
	}
	defer rd.Close()

	s.running = true
	log.Printf("replaying %s at %.1fx speed", path, speed)

	var firstTs int64
	var startReal time.Time
	pktCount := 0

	for s.running {
		rec, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if rec.Flag&binlog.FlagMeta != 0 {
			continue
		}
		pktCount++

		if firstTs == 0 {
			firstTs = rec.TimeMs
			startReal = time.Now()
		} else if speed > 0 {
			targetDelay := time.Duration(float64(rec.TimeMs-firstTs)/speed) * time.Millisecond
			if elapsed := time.Since(startReal); targetDelay > elapsed {
				time.Sleep(targetDelay - elapsed)
			}
		}

		s.handlePacket(rec.Payload, rec.Addr, rec.TimeMs)
	}

	log.Printf("replay done, %d packets", pktCount)
	return nil
}
