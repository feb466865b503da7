// Package binlog reads and writes packet capture files in a pcap-compatible
// layout. Each record carries an 8-byte private header (flag, source port,
// source IPv4) ahead of the raw datagram so a capture can be replayed
// against the engine exactly as it arrived.
package binlog

import (
	"encoding/binary"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

const (
	PcapMagic = 0xA1B2C3D4

	globalHdrLen = 24
	recordHdrLen = 16
	privHdrLen   = 8

	// Record flags. Uplink marks datagrams received on the ranging port;
	// the metadata flag marks records tools may skip on replay.
	FlagUplink = 0x01
	FlagMeta   = 0x10
)

// Writer appends records to a pcap stream. Safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte
}

// NewWriter writes the pcap global header and returns a writer appending
// to w.
func NewWriter(w io.Writer) (*Writer, error) {
	pw := &Writer{
		w:   w,
		buf: make([]byte, 32), // reused buffer for headers
	}
	if err := pw.writeGlobalHeader(); err != nil {
		return nil, err
	}
	return pw, nil
}

// NewFileWriter creates path and returns a writer that owns the file.
func NewFileWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	pw, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return pw, nil
}

func (pw *Writer) writeGlobalHeader() error {
	// Magic(4), Major(2), Minor(2), Zone(4), Sig(4), Snap(4), Link(4)
	b := make([]byte, globalHdrLen)
	binary.LittleEndian.PutUint32(b[0:], PcapMagic)
	binary.LittleEndian.PutUint16(b[4:], 2)
	binary.LittleEndian.PutUint16(b[6:], 4)
	binary.LittleEndian.PutUint32(b[16:], 65535) // snaplen
	binary.LittleEndian.PutUint32(b[20:], 1)     // link type, unused

	_, err := pw.w.Write(b)
	return err
}

// WritePacket appends one record stamped with the current time.
func (pw *Writer) WritePacket(flag uint16, addr *net.UDPAddr, data []byte) error {
	return pw.writeAt(time.Now(), flag, addr, data)
}

// WritePacketAt is WritePacket with an explicit timestamp, for tools that
// rewrite captures.
func (pw *Writer) WritePacketAt(ts time.Time, flag uint16, addr *net.UDPAddr, data []byte) error {
	return pw.writeAt(ts, flag, addr, data)
}

func (pw *Writer) writeAt(ts time.Time, flag uint16, addr *net.UDPAddr, data []byte) error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	totalLen := uint32(len(data) + privHdrLen)

	// Standard record header: ts_sec(4), ts_usec(4), incl_len(4), orig_len(4)
	binary.LittleEndian.PutUint32(pw.buf[0:], uint32(ts.Unix()))
	binary.LittleEndian.PutUint32(pw.buf[4:], uint32(ts.Nanosecond()/1000))
	binary.LittleEndian.PutUint32(pw.buf[8:], totalLen)
	binary.LittleEndian.PutUint32(pw.buf[12:], totalLen)
	if _, err := pw.w.Write(pw.buf[:recordHdrLen]); err != nil {
		return err
	}

	// Private header: flag(2), port(2), ip(4)
	binary.LittleEndian.PutUint16(pw.buf[0:], flag)
	port := uint16(0)
	var ip4 net.IP
	if addr != nil {
		port = uint16(addr.Port)
		ip4 = addr.IP.To4()
	}
	binary.LittleEndian.PutUint16(pw.buf[2:], port)
	if ip4 != nil && len(ip4) == 4 {
		// Network byte order, matching what external capture tools expect.
		copy(pw.buf[4:8], ip4)
	} else {
		binary.LittleEndian.PutUint32(pw.buf[4:], 0)
	}
	if _, err := pw.w.Write(pw.buf[:privHdrLen]); err != nil {
		return err
	}

	_, err := pw.w.Write(data)
	return err
}

// Close closes the underlying writer when it is closable.
func (pw *Writer) Close() error {
	if c, ok := pw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
