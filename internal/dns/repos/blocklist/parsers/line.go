package parsers

import (
	"strings"

	"github.com/haukened/dns-block/internal/dns/domain"
)

// ParseLine extracts the candidate domain from one line of a block or
// whitelist file. Both plain lists and /etc/hosts style files are accepted:
//
//	ads.example.com            # comment
//	0.0.0.0 tracker.example.net
//
// The returned name is a substring of line whenever line is already
// lowercase, so parsing an arena copies nothing. Lines without a usable
// name (blank, comment only, IP only, single label, malformed) report false.
func ParseLine(line string) (domain.Domain, bool) {
	line = stripInlineComment(stripLineBOM(line))

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Domain{}, false
	}

	raw := fields[0]
	if isIP(raw) {
		if len(fields) < 2 {
			return domain.Domain{}, false
		}
		// hosts format: the IP column is ignored, the first hostname wins
		raw = fields[1]
	}

	name := normalizeDomainName(raw)
	if !isValidName(name) || isIP(name) {
		return domain.Domain{}, false
	}
	return domain.NewDomain(name)
}
