// Package wire provides encoding and decoding of DNS messages for UDP transport.
// It handles the subset of the RFC 1035 wire format needed to follow CNAMEs.
package wire

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/haukened/dns-block/internal/dns/common/log"
	"github.com/haukened/dns-block/internal/dns/domain"
)

const (
	headerLen      = 12
	fixedRRLen     = 10 // TYPE, CLASS, TTL, RDLENGTH
	maxLabelLen    = 63
	maxNameLen     = 255
	maxPointerHops = 126
	flagsQueryRD   = 0x0100
)

// udpCodec implements the DNSCodec interface for standard DNS over UDP messages.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates and returns a new instance of udpCodec using the provided logger.
func NewUDPCodec(logger log.Logger) *udpCodec {
	return &udpCodec{
		logger: logger,
	}
}

// EncodeQuery serializes a recursive A/IN query for name.
func (c *udpCodec) EncodeQuery(name string, id uint16) ([]byte, error) {
	qname, err := encodeName(name)
	if err != nil {
		return nil, &EncodingError{Name: name, Err: err}
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerLen+len(qname)+4))

	// Header
	_ = binary.Write(buf, binary.BigEndian, id)                   // ID
	_ = binary.Write(buf, binary.BigEndian, uint16(flagsQueryRD)) // Flags: standard query, RD=1
	_ = binary.Write(buf, binary.BigEndian, uint16(1))            // QDCOUNT
	_ = binary.Write(buf, binary.BigEndian, uint16(0))            // ANCOUNT
	_ = binary.Write(buf, binary.BigEndian, uint16(0))            // NSCOUNT
	_ = binary.Write(buf, binary.BigEndian, uint16(0))            // ARCOUNT

	// Question
	buf.Write(qname)
	_ = binary.Write(buf, binary.BigEndian, uint16(domain.RRTypeA))
	_ = binary.Write(buf, binary.BigEndian, uint16(domain.RRClassIN))

	return buf.Bytes(), nil
}

// encodeName writes name as length-prefixed labels with a zero terminator.
func encodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return nil, ErrEmptyName
	}
	out := make([]byte, 0, len(name)+2)
	for _, label := range strings.Split(name, ".") {
		if len(label) == 0 {
			return nil, ErrEmptyLabel
		}
		if len(label) > maxLabelLen {
			return nil, ErrLabelTooLong
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	if len(out) > maxNameLen {
		return nil, ErrNameTooLong
	}
	return out, nil
}

// NameLength returns how many bytes the name starting at offset occupies in
// msg. A compression pointer ends the name and counts as its two bytes.
func NameLength(msg []byte, offset int) (int, error) {
	start := offset
	for {
		if offset < 0 || offset >= len(msg) {
			return 0, decodeErr(offset, ErrTruncated)
		}
		l := int(msg[offset])
		switch l & 0xC0 {
		case 0x00:
			if l == 0 {
				return offset + 1 - start, nil
			}
			offset += 1 + l
		case 0xC0:
			if offset+1 >= len(msg) {
				return 0, decodeErr(offset, ErrTruncated)
			}
			return offset + 2 - start, nil
		default:
			return 0, decodeErr(offset, ErrBadLabelType)
		}
	}
}

// decodeName reads the name at offset, following compression pointers.
// The result has no trailing dot.
func decodeName(msg []byte, offset int) (string, error) {
	var sb strings.Builder
	hops := 0
	for {
		if offset < 0 || offset >= len(msg) {
			return "", decodeErr(offset, ErrTruncated)
		}
		l := int(msg[offset])
		switch l & 0xC0 {
		case 0x00:
			if l == 0 {
				return sb.String(), nil
			}
			start, end := offset+1, offset+1+l
			if end > len(msg) {
				return "", decodeErr(offset, ErrTruncated)
			}
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.Write(msg[start:end])
			if sb.Len() > maxNameLen {
				return "", decodeErr(offset, ErrNameTooLong)
			}
			offset = end
		case 0xC0:
			if offset+1 >= len(msg) {
				return "", decodeErr(offset, ErrTruncated)
			}
			hops++
			if hops > maxPointerHops {
				return "", decodeErr(offset, ErrPointerLoop)
			}
			offset = int(binary.BigEndian.Uint16(msg[offset:offset+2]) & 0x3FFF)
		default:
			return "", decodeErr(offset, ErrBadLabelType)
		}
	}
}

func parseHeader(msg []byte) (Header, error) {
	if len(msg) < headerLen {
		return Header{}, decodeErr(len(msg), ErrTruncated)
	}
	return Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		Flags:   binary.BigEndian.Uint16(msg[2:4]),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

func parseQuestion(msg []byte, offset int) (Question, int, error) {
	n, err := NameLength(msg, offset)
	if err != nil {
		return Question{}, 0, err
	}
	name, err := decodeName(msg, offset)
	if err != nil {
		return Question{}, 0, err
	}
	p := offset + n
	if p+4 > len(msg) {
		return Question{}, 0, decodeErr(p, ErrTruncated)
	}
	return Question{
		Name:  name,
		Type:  domain.RRType(binary.BigEndian.Uint16(msg[p : p+2])),
		Class: domain.RRClass(binary.BigEndian.Uint16(msg[p+2 : p+4])),
	}, p + 4, nil
}

// parseResourceRecord reads one record at offset and returns the offset of the next one.
func parseResourceRecord(msg []byte, offset int) (ResourceRecord, int, error) {
	n, err := NameLength(msg, offset)
	if err != nil {
		return ResourceRecord{}, 0, err
	}
	name, err := decodeName(msg, offset)
	if err != nil {
		return ResourceRecord{}, 0, err
	}

	p := offset + n
	if p+fixedRRLen > len(msg) {
		return ResourceRecord{}, 0, decodeErr(p, ErrTruncated)
	}
	rr := ResourceRecord{
		Name:     name,
		Type:     domain.RRType(binary.BigEndian.Uint16(msg[p : p+2])),
		Class:    domain.RRClass(binary.BigEndian.Uint16(msg[p+2 : p+4])),
		TTL:      binary.BigEndian.Uint32(msg[p+4 : p+8]),
		RDLength: binary.BigEndian.Uint16(msg[p+8 : p+10]),
	}

	rdata := p + fixedRRLen
	end := rdata + int(rr.RDLength)
	if end > len(msg) {
		return ResourceRecord{}, 0, decodeErr(rdata, ErrTruncated)
	}

	if rr.Type == domain.RRTypeCNAME {
		tn, err := NameLength(msg, rdata)
		if err != nil {
			return ResourceRecord{}, 0, err
		}
		if rdata+tn > end {
			return ResourceRecord{}, 0, decodeErr(rdata, ErrRDataOverflow)
		}
		rr.Target, err = decodeName(msg, rdata)
		if err != nil {
			return ResourceRecord{}, 0, err
		}
	}

	return rr, end, nil
}

// DecodeResponse parses the header, the question section and the answer
// section of msg. It never reads past the end of msg.
func (c *udpCodec) DecodeResponse(msg []byte) (Response, error) {
	h, err := parseHeader(msg)
	if err != nil {
		return Response{}, err
	}

	resp := Response{Header: h}
	offset := headerLen
	for i := 0; i < int(h.QDCount); i++ {
		q, next, err := parseQuestion(msg, offset)
		if err != nil {
			return Response{}, err
		}
		resp.Questions = append(resp.Questions, q)
		offset = next
	}

	for i := 0; i < int(h.ANCount); i++ {
		rr, next, err := parseResourceRecord(msg, offset)
		if err != nil {
			return Response{}, err
		}
		resp.Answers = append(resp.Answers, rr)
		offset = next
	}

	c.logger.Debug(map[string]any{
		"id":      h.ID,
		"size":    len(msg),
		"answers": len(resp.Answers),
	}, "Decoded DNS response")

	return resp, nil
}

// DecodeCNAMEs returns the CNAME targets found in the answer section of msg.
func (c *udpCodec) DecodeCNAMEs(msg []byte) ([]string, error) {
	resp, err := c.DecodeResponse(msg)
	if err != nil {
		return nil, err
	}
	return resp.CNAMEs(), nil
}

var _ DNSCodec = &udpCodec{}
