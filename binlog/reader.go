package binlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
)

// Record is one captured datagram with its arrival metadata.
type Record struct {
	TimeMs  int64
	Flag    uint16
	Addr    *net.UDPAddr
	Payload []byte
}

// Reader iterates over the records of a capture stream.
type Reader struct {
	r      io.Reader
	closer io.Closer
	buf    []byte
}

// NewReader validates the pcap global header and returns a reader over r.
func NewReader(r io.Reader) (*Reader, error) {
	hdr := make([]byte, globalHdrLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, fmt.Errorf("read global header: %w", err)
	}
	if magic := binary.LittleEndian.Uint32(hdr[0:4]); magic != PcapMagic {
		return nil, fmt.Errorf("invalid capture magic: 0x%x", magic)
	}
	return &Reader{r: r, buf: make([]byte, recordHdrLen+privHdrLen)}, nil
}

// OpenFile opens a capture file for reading.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rd, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	rd.closer = f
	return rd, nil
}

// Next returns the next record, or io.EOF after the last one.
func (rd *Reader) Next() (Record, error) {
	if _, err := io.ReadFull(rd.r, rd.buf[:recordHdrLen]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("read record header: %w", err)
	}

	tsSec := binary.LittleEndian.Uint32(rd.buf[0:4])
	tsUsec := binary.LittleEndian.Uint32(rd.buf[4:8])
	inclLen := binary.LittleEndian.Uint32(rd.buf[8:12])
	if inclLen < privHdrLen {
		return Record{}, fmt.Errorf("record too short: %d bytes", inclLen)
	}

	if _, err := io.ReadFull(rd.r, rd.buf[recordHdrLen:recordHdrLen+privHdrLen]); err != nil {
		return Record{}, fmt.Errorf("read record meta: %w", err)
	}
	priv := rd.buf[recordHdrLen:]
	flag := binary.LittleEndian.Uint16(priv[0:2])
	port := binary.LittleEndian.Uint16(priv[2:4])
	ip := make(net.IP, 4)
	copy(ip, priv[4:8])

	payload := make([]byte, int(inclLen)-privHdrLen)
	if _, err := io.ReadFull(rd.r, payload); err != nil {
		return Record{}, fmt.Errorf("read record payload: %w", err)
	}

	return Record{
		TimeMs:  int64(tsSec)*1000 + int64(tsUsec)/1000,
		Flag:    flag,
		Addr:    &net.UDPAddr{IP: ip, Port: int(port)},
		Payload: payload,
	}, nil
}

// Close closes the underlying file when the reader owns one.
func (rd *Reader) Close() error {
	if rd.closer != nil {
		return rd.closer.Close()
	}
	return nil
}
