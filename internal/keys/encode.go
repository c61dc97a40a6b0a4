package keys

import (
	"strconv"
	"unicode/utf8"
)

var csiFinal = map[Code]byte{
	CodeUp:    'A',
	CodeDown:  'B',
	CodeRight: 'C',
	CodeLeft:  'D',
	CodeHome:  'H',
	CodeEnd:   'F',
}

var tildeCode = map[Code]int{
	CodeInsert: 2,
	CodeDelete: 3,
	CodePgUp:   5,
	CodePgDown: 6,
}

// Encode returns the bytes a terminal in its default modes sends for k.
// Unknown keys encode to nil.
func Encode(k Key) []byte {
	var out []byte
	switch k.Code {
	case CodeRune:
		if k.Mod&ModAlt != 0 {
			out = append(out, 0x1b)
		}
		if k.Mod&ModCtrl != 0 {
			c, ok := ctrlByte(k.Rune)
			if !ok {
				return nil
			}
			return append(out, c)
		}
		return utf8.AppendRune(out, k.Rune)
	case CodeEnter:
		out = append(out, '\r')
	case CodeBackspace:
		out = append(out, 0x7f)
	case CodeTab:
		if k.Mod&ModShift != 0 {
			return []byte("\x1b[Z")
		}
		out = append(out, '\t')
	case CodeEsc:
		out = append(out, 0x1b)
	default:
		if f, ok := csiFinal[k.Code]; ok {
			return withModifier("\x1b[", "1", k.Mod, f)
		}
		if n, ok := tildeCode[k.Code]; ok {
			return withModifier("\x1b[", strconv.Itoa(n), k.Mod, '~')
		}
		return nil
	}
	if k.Mod&ModAlt != 0 {
		out = append([]byte{0x1b}, out...)
	}
	return out
}

func ctrlByte(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r-'a') + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r-'A') + 1, true
	case r == ' ' || r == '@' || r == '2':
		return 0, true
	case r == '[' || r == '3':
		return 0x1b, true
	case r == '\\' || r == '4':
		return 0x1c, true
	case r == ']' || r == '5':
		return 0x1d, true
	case r == '^' || r == '6':
		return 0x1e, true
	case r == '_' || r == '7' || r == '/':
		return 0x1f, true
	case r == '?' || r == '8':
		return 0x7f, true
	}
	return 0, false
}

// xterm modifier parameter: 1 + shift(1) + alt(2) + ctrl(4)
func modParam(m Mod) int {
	p := 1
	if m&ModShift != 0 {
		p++
	}
	if m&ModAlt != 0 {
		p += 2
	}
	if m&ModCtrl != 0 {
		p += 4
	}
	return p
}

func withModifier(prefix, param string, m Mod, final byte) []byte {
	seq := []byte(prefix)
	if m != 0 {
		seq = append(seq, param...)
		seq = append(seq, ';')
		seq = strconv.AppendInt(seq, int64(modParam(m)), 10)
	} else if param != "1" {
		seq = append(seq, param...)
	}
	return append(seq, final)
}
