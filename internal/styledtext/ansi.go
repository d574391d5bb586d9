package styledtext

import "strconv"

// replacementDot is the printable stand-in for control characters that
// carry no styling meaning (anything other than tab/LF/CR and a
// recognized SGR escape).
const replacementDot = '·'

// ParseANSI turns raw tool output (which may embed ANSI escape
// sequences) into a StyledText. It runs a minimal SGR interpreter:
// foreground/background colors (8/16/256/24-bit forms), bold, italic,
// underline, faint, reverse, and reset (SGR 0) are recognized. For any
// other "ESC [" sequence only the ESC is dropped and the characters after
// it are kept as text. Other control characters, including an ESC not
// followed by '[', are replaced with replacementDot so a stray NUL/BEL
// can't corrupt layout.
func ParseANSI(data string, base Style) StyledText {
	var out []Run
	cur := base

	rs := []rune(data)
	for i := 0; i < len(rs); i++ {
		r := rs[i]

		if r == 0x1b && i+1 < len(rs) && rs[i+1] == '[' {
			end, ok := findSGREnd(rs, i+2)
			if ok {
				params := string(rs[i+2 : end])
				cur = applySGR(cur, params)
				i = end
				continue
			}
			// Unterminated/unrecognized escape: drop just the ESC.
			continue
		}

		switch r {
		case '\t', '\n', '\r':
			out = append(out, Run{Ch: r, Style: cur})
		default:
			if r < 0x20 || r == 0x7f {
				out = append(out, Run{Ch: replacementDot, Style: cur})
			} else {
				out = append(out, Run{Ch: r, Style: cur})
			}
		}
	}
	return StyledText{runs: out}
}

// findSGREnd scans from start (just after "ESC[") for the terminating
// 'm' of an SGR sequence. Returns the index of 'm' and true on success.
func findSGREnd(rs []rune, start int) (int, bool) {
	for i := start; i < len(rs) && i < start+64; i++ {
		if rs[i] == 'm' {
			return i, true
		}
		if !(rs[i] == ';' || (rs[i] >= '0' && rs[i] <= '9')) {
			return 0, false // not a plain SGR sequence (e.g. cursor move)
		}
	}
	return 0, false
}

func applySGR(s Style, params string) Style {
	if params == "" {
		return Style{} // bare ESC[m means reset
	}
	codes := splitInts(params)
	for i := 0; i < len(codes); i++ {
		code := codes[i]
		switch {
		case code == 0:
			s = Style{}
		case code == 1:
			s.Bold = true
		case code == 2:
			s.Faint = true
		case code == 3:
			s.Italic = true
		case code == 4:
			s.Underline = true
		case code == 7:
			s.Reverse = true
		case code == 22:
			s.Bold, s.Faint = false, false
		case code == 23:
			s.Italic = false
		case code == 24:
			s.Underline = false
		case code == 27:
			s.Reverse = false
		case code >= 30 && code <= 37:
			s.FG = ansi16(code - 30)
		case code == 38:
			c, consumed := extendedColor(codes[i:])
			s.FG = c
			i += consumed
		case code == 39:
			s.FG = Default
		case code >= 40 && code <= 47:
			s.BG = ansi16(code - 40)
		case code == 48:
			c, consumed := extendedColor(codes[i:])
			s.BG = c
			i += consumed
		case code == 49:
			s.BG = Default
		case code >= 90 && code <= 97:
			s.FG = ansi16Bright(code - 90)
		case code >= 100 && code <= 107:
			s.BG = ansi16Bright(code - 100)
		}
	}
	return s
}

// extendedColor parses "38;5;N" (256-color) or "38;2;R;G;B" (24-bit)
// forms, given codes starting at the 38/48 introducer. Returns the color
// and how many extra codes (beyond the introducer) were consumed.
func extendedColor(codes []int) (Color, int) {
	if len(codes) < 2 {
		return Default, 0
	}
	switch codes[1] {
	case 5:
		if len(codes) < 3 {
			return Default, 1
		}
		return palette256(codes[2]), 2
	case 2:
		if len(codes) < 5 {
			return Default, len(codes) - 1
		}
		return RGB(uint8(codes[2]), uint8(codes[3]), uint8(codes[4])), 4
	}
	return Default, 1
}

func ansi16(n int) Color {
	table := [8]Color{
		RGB(0, 0, 0), RGB(205, 0, 0), RGB(0, 205, 0), RGB(205, 205, 0),
		RGB(0, 0, 238), RGB(205, 0, 205), RGB(0, 205, 205), RGB(229, 229, 229),
	}
	if n < 0 || n > 7 {
		return Default
	}
	return table[n]
}

func ansi16Bright(n int) Color {
	table := [8]Color{
		RGB(127, 127, 127), RGB(255, 0, 0), RGB(0, 255, 0), RGB(255, 255, 0),
		RGB(92, 92, 255), RGB(255, 0, 255), RGB(0, 255, 255), RGB(255, 255, 255),
	}
	if n < 0 || n > 7 {
		return Default
	}
	return table[n]
}

// palette256 approximates the standard 256-color xterm palette: 0-15
// are the 16-color table, 16-231 are a 6x6x6 RGB cube, 232-255 are a
// grayscale ramp.
func palette256(n int) Color {
	switch {
	case n < 8:
		return ansi16(n)
	case n < 16:
		return ansi16Bright(n - 8)
	case n < 232:
		n -= 16
		r := n / 36
		g := (n / 6) % 6
		b := n % 6
		step := func(v int) uint8 {
			if v == 0 {
				return 0
			}
			return uint8(55 + v*40)
		}
		return RGB(step(r), step(g), step(b))
	default:
		level := uint8(8 + (n-232)*10)
		return RGB(level, level, level)
	}
}

func splitInts(s string) []int {
	var out []int
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ';' {
			if i == start {
				out = append(out, 0) // "38;;5" etc: empty field means 0
			} else if v, err := strconv.Atoi(s[start:i]); err == nil {
				out = append(out, v)
			}
			start = i + 1
		}
	}
	return out
}
