package sqlstore

import (
	"strconv"
	"strings"
)

// Dollar rewrites ? placeholders as $1, $2... for drivers that need them.
func Dollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)

	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}

	return b.String()
}
