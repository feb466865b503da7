// Package server receives ARF ranging frames over UDP and drives one
// correction engine per tag. Pose frames feed a shared application pose
// source; corrected estimates fan out to the web hub and export targets.
package server

import (
	"encoding/json"
	"log"
	"net"
	"sync"
	"time"

	"aoa-engine-go/binlog"
	"aoa-engine-go/correction"
	"aoa-engine-go/export"
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
	"aoa-engine-go/web"
)

const (
	DefaultPort   = 44333
	MaxPacketSize = 65535
)

type wsPos struct {
	ID        int64   `json:"id"`
	TS        int64   `json:"ts"`
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Distance  float64 `json:"distance"`
	Fom       float64 `json:"fom"`
}

// UdpServer listens for ranging frames and maintains one engine per tag
// address. Packet processing is single-threaded; only the tag snapshot is
// shared with HTTP handlers.
type UdpServer struct {
	conn       *net.UDPConn
	profile    correction.Profile
	poseSource *pose.ApplicationSource

	engines map[uint32]*correction.Engine
	pcap    *binlog.Writer
	sender  *export.Sender
	webHub  *web.Hub
	running bool

	// Last published estimate per tag, for the /tags endpoint.
	tagsState map[uint32]*wsPos
	mu        sync.Mutex
}

func NewUdpServer(port int, profile correction.Profile) (*UdpServer, error) {
	if port == 0 {
		port = DefaultPort
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port, IP: net.IPv4zero})
	if err != nil {
		return nil, err
	}
	conn.SetReadBuffer(256 * 1024)

	return &UdpServer{
		conn:       conn,
		profile:    profile,
		poseSource: pose.NewApplicationSource(profile.PoseCaps),
		engines:    make(map[uint32]*correction.Engine),
		tagsState:  make(map[uint32]*wsPos),
	}, nil
}

func (s *UdpServer) SetPcapWriter(pw *binlog.Writer) {
	s.pcap = pw
}

func (s *UdpServer) SetSender(snd *export.Sender) {
	s.sender = snd
}

func (s *UdpServer) SetWebHub(h *web.Hub) {
	s.webHub = h
}

// PoseSource exposes the shared pose feed so external sensors (or tests)
// can push poses directly.
func (s *UdpServer) PoseSource() *pose.ApplicationSource {
	return s.poseSource
}

// GetTags snapshots the last estimate of every tag seen so far.
func (s *UdpServer) GetTags() interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]*wsPos, 0, len(s.tagsState))
	for _, t := range s.tagsState {
		tags = append(tags, t)
	}
	return tags
}

func (s *UdpServer) Start() {
	s.running = true
	buf := make([]byte, MaxPacketSize)
	log.Printf("UDP server listening on %s", s.conn.LocalAddr())

	for s.running {
		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if s.running {
				log.Printf("read error: %v", err)
			}
			continue
		}

		// handlePacket keeps sub-slices of the buffer, so copy first.
		data := make([]byte, n)
		copy(data, buf[:n])

		s.handlePacket(data, addr, time.Now().UnixMilli())
	}
}

func (s *UdpServer) Stop() {
	s.running = false
	s.conn.Close()
	for _, e := range s.engines {
		e.Close()
	}
}

// handlePacket walks the datagram, which may carry several frames back to
// back. A byte that does not start a valid header is skipped so one
// corrupted frame cannot poison the rest of the datagram.
func (s *UdpServer) handlePacket(data []byte, addr *net.UDPAddr, ts int64) {
	offset := 0
	for offset < len(data) {
		if len(data)-offset < ArfHdrLen {
			break
		}

		hdr, err := ParseFrameHeader(data[offset:])
		if err != nil {
			offset++
			continue
		}

		totalLen := ArfHdrLen + hdr.BodyLen
		if offset+totalLen > len(data) {
			break
		}

		pktData := data[offset : offset+totalLen]
		if s.pcap != nil {
			_ = s.pcap.WritePacket(binlog.FlagUplink, addr, pktData)
		}

		body := pktData[ArfHdrLen:]
		switch hdr.Type {
		case TypePoseFrame:
			p, err := ParsePoseFrame(body)
			if err != nil {
				log.Printf("pose frame from %x: %v", hdr.Addr, err)
				break
			}
			s.poseSource.ApplyPose(p)
		case TypeAoaFrame:
			_, reading, err := ParseAoaFrame(body)
			if err != nil {
				log.Printf("aoa frame from %x: %v", hdr.Addr, err)
				break
			}
			s.feedReading(hdr.Addr, ts, reading)
		}

		offset += totalLen
	}
}

func (s *UdpServer) feedReading(tagID uint32, ts int64, reading geom.Annotated) {
	engine := s.engineFor(tagID)
	if engine == nil {
		return
	}

	engine.Add(reading, ts)
	out, ok := engine.Compute(ts)
	if !ok {
		return
	}
	s.publish(tagID, ts, out.ToAnnotated().WithFOMFrom(reading))
}

// engineFor returns the tag's engine, creating it from the profile on
// first contact.
func (s *UdpServer) engineFor(tagID uint32) *correction.Engine {
	if e, ok := s.engines[tagID]; ok {
		return e
	}
	e, err := s.profile.NewEngine(s.poseSource)
	if err != nil {
		// The profile was validated at startup, so this is a bug.
		log.Printf("engine for tag %x: %v", tagID, err)
		return nil
	}
	log.Printf("tracking new tag %x", tagID)
	s.engines[tagID] = e
	return e
}

func (s *UdpServer) publish(tagID uint32, ts int64, est geom.Annotated) {
	if s.sender != nil {
		s.sender.Send(export.FormatPosition(tagID, ts, est), export.FlagPosition)
	}

	fom := est.AzimuthFOM
	if est.ElevationFOM < fom {
		fom = est.ElevationFOM
	}
	if est.DistanceFOM < fom {
		fom = est.DistanceFOM
	}
	pos := &wsPos{
		ID:        int64(tagID),
		TS:        ts,
		Azimuth:   est.Azimuth,
		Elevation: est.Elevation,
		Distance:  est.Distance,
		Fom:       fom,
	}

	s.mu.Lock()
	s.tagsState[tagID] = pos
	s.mu.Unlock()

	if s.webHub != nil {
		b, _ := json.Marshal(pos)
		s.webHub.Broadcast(b)
	}
}
