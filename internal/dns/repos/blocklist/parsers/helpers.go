package parsers

import (
	"net"
	"strings"

	"github.com/haukened/dns-block/internal/dns/common/utils"
)

// isValidName checks the label structure of a canonical name:
//   - The total length must not exceed 253 characters (255 on the wire).
//   - Each label must be between 1 and 63 characters long.
//   - No wildcard characters remain.
func isValidName(name string) bool {
	if name == "" || len(name) > 253 {
		return false
	}
	if strings.ContainsRune(name, '*') {
		return false
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
	}
	return true
}

// normalizeDomainName removes a leading "*." or "." marker and returns the
// canonical form. Blocking a name always covers its subdomains, so the marker
// carries no extra meaning here.
func normalizeDomainName(name string) string {
	name = strings.TrimPrefix(name, "*.")
	name = strings.TrimPrefix(name, ".")
	return utils.CanonicalDNSName(name)
}

// stripInlineComment drops everything from the first '#'.
func stripInlineComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

// stripLineBOM removes a UTF-8 byte order mark at the start of a line.
func stripLineBOM(line string) string {
	return strings.TrimPrefix(line, "\uFEFF")
}

func isIP(s string) bool {
	return net.ParseIP(s) != nil
}
