package glk

// Latin-1 case tables, matching the legacy implementation exactly: ASCII
// letters plus the 0xC0–0xFE accented range (skipping multiply/divide).
var (
	charToLower [256]byte
	charToUpper [256]byte
)

func init() {
	for i := 0; i < 256; i++ {
		charToLower[i] = byte(i)
		charToUpper[i] = byte(i)
	}
	for c := 'A'; c <= 'Z'; c++ {
		charToLower[c] = byte(c + ('a' - 'A'))
		charToUpper[c+('a'-'A')] = byte(c)
	}
	for c := 0xC0; c <= 0xDE; c++ {
		if c == 0xD7 {
			continue
		}
		charToLower[c] = byte(c + 0x20)
		charToUpper[c+0x20] = byte(c)
	}
}

// CharToLower lowercases one Latin-1 character.
func (s *Session) CharToLower(ch byte) byte { return charToLower[ch] }

// CharToUpper uppercases one Latin-1 character.
func (s *Session) CharToUpper(ch byte) byte { return charToUpper[ch] }

func runeToLower(ch rune) rune {
	if ch < 0x100 {
		return rune(charToLower[ch])
	}
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

func runeToUpper(ch rune) rune {
	if ch < 0x100 {
		return rune(charToUpper[ch])
	}
	if ch >= 'a' && ch <= 'z' {
		return ch - ('a' - 'A')
	}
	return ch
}

// BufferToLowerCaseUni lowercases numchars characters of buf in place and
// returns the (unchanged) character count.
func (s *Session) BufferToLowerCaseUni(buf []rune, numchars uint32) uint32 {
	n := int(numchars)
	if n > len(buf) {
		n = len(buf)
	}
	for i := 0; i < n; i++ {
		buf[i] = runeToLower(buf[i])
	}
	return numchars
}

// BufferToUpperCaseUni uppercases numchars characters of buf in place.
func (s *Session) BufferToUpperCaseUni(buf []rune, numchars uint32) uint32 {
	n := int(numchars)
	if n > len(buf) {
		n = len(buf)
	}
	for i := 0; i < n; i++ {
		buf[i] = runeToUpper(buf[i])
	}
	return numchars
}

// BufferToTitleCaseUni uppercases the first character and, when lowerrest
// is set, lowercases the remainder.
func (s *Session) BufferToTitleCaseUni(buf []rune, numchars uint32, lowerrest bool) uint32 {
	n := int(numchars)
	if n > len(buf) {
		n = len(buf)
	}
	if n > 0 {
		buf[0] = runeToUpper(buf[0])
	}
	if lowerrest {
		for i := 1; i < n; i++ {
			buf[i] = runeToLower(buf[i])
		}
	}
	return numchars
}

// BufferCanonDecomposeUni is an identity stub, as in the legacy layer.
func (s *Session) BufferCanonDecomposeUni(buf []rune, numchars uint32) uint32 {
	return numchars
}

// BufferCanonNormalizeUni is an identity stub, as in the legacy layer.
func (s *Session) BufferCanonNormalizeUni(buf []rune, numchars uint32) uint32 {
	return numchars
}
