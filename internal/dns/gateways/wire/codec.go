package wire

import (
	"errors"
	"fmt"

	"github.com/haukened/dns-block/internal/dns/domain"
)

// DNSCodec encodes the single query shape the whitelist resolver sends and
// decodes the CNAME chain out of the matching responses.
type DNSCodec interface {
	EncodeQuery(name string, id uint16) ([]byte, error)
	DecodeResponse(msg []byte) (Response, error)
	DecodeCNAMEs(msg []byte) ([]string, error)
}

// Reasons wrapped by EncodingError and DecodingError.
var (
	ErrEmptyName     = errors.New("empty name")
	ErrEmptyLabel    = errors.New("empty label")
	ErrLabelTooLong  = errors.New("label too long")
	ErrNameTooLong   = errors.New("name too long")
	ErrTruncated     = errors.New("message truncated")
	ErrBadLabelType  = errors.New("reserved label type")
	ErrPointerLoop   = errors.New("too many compression pointers")
	ErrRDataOverflow = errors.New("name overruns rdata")
)

// EncodingError reports a name that cannot be put on the wire.
type EncodingError struct {
	Name string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %q: %v", e.Name, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError reports a malformed or truncated message and where parsing stopped.
type DecodingError struct {
	Offset int
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decode at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func decodeErr(offset int, err error) error {
	return &DecodingError{Offset: offset, Err: err}
}

// Header is the fixed 12-byte DNS message header.
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// Question is one entry of the question section.
type Question struct {
	Name  string
	Type  domain.RRType
	Class domain.RRClass
}

// ResourceRecord is one answer. Target is only set for CNAME records;
// the RDATA of every other type is skipped.
type ResourceRecord struct {
	Name     string
	Type     domain.RRType
	Class    domain.RRClass
	TTL      uint32
	RDLength uint16
	Target   string
}

// Response is the decoded part of a message: header, questions and answers.
// Authority and additional sections are not read.
type Response struct {
	Header    Header
	Questions []Question
	Answers   []ResourceRecord
}

// CNAMEs returns the targets of all CNAME answers in message order.
func (r Response) CNAMEs() []string {
	var out []string
	for _, rr := range r.Answers {
		if rr.Type == domain.RRTypeCNAME {
			out = append(out, rr.Target)
		}
	}
	return out
}
