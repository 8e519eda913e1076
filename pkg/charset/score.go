package charset

// score counts well-formed multi-byte sequences and bytes that cannot belong
// to the encoding being tested.
type score struct {
	pairs   int
	kana    int
	invalid int
}

func (s score) clean() bool {
	return s.invalid == 0 && s.pairs > 0
}

func scoreShiftJIS(data []byte) score {
	var s score
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b < 0x80:
		case b >= 0xA1 && b <= 0xDF:
			// half-width katakana
			s.pairs++
			s.kana++
		case (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC):
			if i+1 >= len(data) {
				s.invalid++
				continue
			}
			t := data[i+1]
			if (t >= 0x40 && t <= 0x7E) || (t >= 0x80 && t <= 0xFC) {
				s.pairs++
				i++
				continue
			}
			s.invalid++
		default:
			s.invalid++
		}
	}
	return s
}

func scoreEUCJP(data []byte) score {
	var s score
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b < 0x80:
		case b == 0x8E:
			if i+1 < len(data) && data[i+1] >= 0xA1 && data[i+1] <= 0xDF {
				s.pairs++
				s.kana++
				i++
				continue
			}
			s.invalid++
		case b == 0x8F:
			if i+2 < len(data) && isEUCByte(data[i+1]) && isEUCByte(data[i+2]) {
				s.pairs++
				i += 2
				continue
			}
			s.invalid++
		case isEUCByte(b):
			if i+1 < len(data) && isEUCByte(data[i+1]) {
				s.pairs++
				i++
				continue
			}
			s.invalid++
		default:
			s.invalid++
		}
	}
	return s
}

func isEUCByte(b byte) bool {
	return b >= 0xA1 && b <= 0xFE
}
