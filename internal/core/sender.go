package core

import (
	"net/mail"
	"regexp"
	"strings"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// StripSender reduces a From header to the sender's display name. The
// address in angle brackets or parentheses is discarded, surrounding
// whitespace trimmed and quote characters removed. When the header has no
// display name the bare address is used.
func StripSender(from string) string {
	if addr, err := mail.ParseAddress(from); err == nil {
		if name := cleanDisplayName(addr.Name); name != "" {
			return name
		}
		return addr.Address
	}

	name := from
	address := ""
	if i := strings.Index(name, "<"); i >= 0 {
		address = strings.TrimSuffix(strings.TrimSpace(name[i+1:]), ">")
		name = name[:i]
	}
	name = cleanDisplayName(parenthetical.ReplaceAllString(name, ""))
	if name == "" {
		return strings.TrimSpace(address)
	}
	return name
}

func cleanDisplayName(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.TrimSpace(name)
	return strings.TrimSpace(strings.Trim(name, "'"))
}

// assignSenderCounts sets SenderCount on every record to the number of
// records in the batch with the same sender
func assignSenderCounts(records []EmailRecord) {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.Sender]++
	}
	for i := range records {
		records[i].SenderCount = counts[records[i].Sender]
	}
}
