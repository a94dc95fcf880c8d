package render

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	frPrinter   = message.NewPrinter(language.French)
	frSeparator = strings.NewReplacer("\u202f", " ", "\u00a0", " ")
)

// FormatInt groups digits by thousands with plain spaces: 1 200 000.
func FormatInt(n int64) string {
	return frSeparator.Replace(frPrinter.Sprintf("%d", n))
}
