// Package charset turns raw export bytes into text. Detection is best effort
// and never fails: when the byte patterns are inconclusive the data is
// decoded as UTF-8 with replacement characters.
package charset

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// Encoding labels, as used by source descriptors.
const (
	UTF8     = "utf-8"
	ShiftJIS = "shift_jis"
	EUCJP    = "euc-jp"
	Auto     = "auto"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Result is decoded text plus the encoding that was used. The label is advisory.
type Result struct {
	Text      string
	Encoding  string
	Ambiguous bool
}

// Normalize maps the spellings found in descriptor tables to a label.
func Normalize(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8":
		return UTF8
	case "shift_jis", "shift-jis", "sjis", "cp932", "windows-31j", "ms932":
		return ShiftJIS
	case "euc-jp", "eucjp", "euc_jp":
		return EUCJP
	default:
		return Auto
	}
}

// Decode detects the encoding of data and decodes it. hint is the encoding
// label from the matched descriptor (or empty) and only breaks ties between
// candidates whose byte patterns are equally plausible.
func Decode(data []byte, hint string) Result {
	hint = Normalize(hint)

	if bytes.HasPrefix(data, utf8BOM) {
		return Result{Text: string(data[len(utf8BOM):]), Encoding: UTF8}
	}
	if utf8.Valid(data) {
		return Result{Text: string(data), Encoding: UTF8}
	}

	sjis := scoreShiftJIS(data)
	euc := scoreEUCJP(data)

	var label string
	switch {
	case sjis.clean() && euc.clean():
		switch {
		case hint == EUCJP:
			label = EUCJP
		case hint == ShiftJIS:
			label = ShiftJIS
		case sjis.kana > euc.kana:
			// EUC-JP kanji pairs also read as Shift-JIS half-width kana
			label = EUCJP
		default:
			label = ShiftJIS
		}
	case sjis.clean():
		label = ShiftJIS
	case euc.clean():
		label = EUCJP
	default:
		return Result{Text: strings.ToValidUTF8(string(data), "�"), Encoding: UTF8, Ambiguous: true}
	}

	text, err := decodeWith(encodingFor(label), data)
	if err != nil {
		return Result{Text: strings.ToValidUTF8(string(data), "�"), Encoding: UTF8, Ambiguous: true}
	}
	return Result{Text: text, Encoding: label}
}

// DecodeAs decodes data with a fixed encoding, falling back to Decode when
// the label is unknown or auto.
func DecodeAs(data []byte, label string) Result {
	label = Normalize(label)
	if label == Auto || label == UTF8 {
		return Decode(data, label)
	}
	text, err := decodeWith(encodingFor(label), data)
	if err != nil {
		return Decode(data, label)
	}
	return Result{Text: text, Encoding: label}
}

func encodingFor(label string) encoding.Encoding {
	if label == EUCJP {
		return japanese.EUCJP
	}
	return japanese.ShiftJIS
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
