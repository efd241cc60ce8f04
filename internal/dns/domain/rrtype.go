package domain

import "fmt"

// RRType represents a DNS resource record type.
type RRType uint16

// Only the types the CNAME lookups touch are named.
const (
	RRTypeA     RRType = 1 // A - IPv4 address
	RRTypeCNAME RRType = 5 // CNAME - Canonical name
)

// String returns the textual representation of the RRType.
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	case RRTypeCNAME:
		return "CNAME"
	default:
		return fmt.Sprintf("TYPE%d", uint16(t))
	}
}
