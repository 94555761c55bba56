package device

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseExtAddr parses a bracket-delimited hexadecimal extended address as
// reported by the Get property query, e.g. "[18b4300000000001]".
func ParseExtAddr(raw string) (uint64, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return 0, fmt.Errorf("malformed extended address %q", raw)
	}

	addr, err := strconv.ParseUint(s[1:len(s)-1], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing extended address %q: %w", raw, err)
	}
	return addr, nil
}
