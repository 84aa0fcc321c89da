package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain decodes content as UTF-8, replacing invalid sequences and dropping a
// leading byte-order mark.
func extractPlain(content []byte) string {
	s := string(content)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\ufffd")
	}
	return strings.TrimPrefix(s, "\ufeff")
}
