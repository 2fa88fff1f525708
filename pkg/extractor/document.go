package extractor

import (
	"strings"
	"unicode/utf8"

	"github.com/erc-insight/platform/pkg/common/logger"
	"golang.org/x/text/encoding/charmap"
)

// DecodeText turns raw document bytes into normalized text. Reports arrive
// mostly as UTF-8, but older lab systems still export Latin-1 / Windows-1252
// files, so invalid UTF-8 input is re-decoded instead of rejected.
func DecodeText(raw []byte) string {
	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			decoded, _ = charmap.ISO8859_1.NewDecoder().Bytes(raw)
		}
		text = string(decoded)
		logger.Log.WithField("bytes", len(raw)).Debug("Re-decoded non-UTF-8 document")
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return text
}
