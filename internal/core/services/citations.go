package services

import (
	"regexp"
	"strconv"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

var citationPattern = regexp.MustCompile(`\bSRC(\d+)\b`)

// ValidateCitations extracts every SRCk tag cited in answer, in first-seen
// order without duplicates, and splits them into tags that exist among
// sources SRC1..SRCn and tags that do not.
func ValidateCitations(answer string, n int) (valid, invalid []string) {
	seen := make(map[string]bool)
	for _, m := range citationPattern.FindAllStringSubmatch(answer, -1) {
		tag := m[0]
		k, err := strconv.Atoi(m[1])
		if err == nil {
			tag = domain.Tag(k)
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true

		if err != nil || k < 1 || k > n {
			invalid = append(invalid, tag)
			continue
		}
		valid = append(valid, tag)
	}
	return valid, invalid
}
