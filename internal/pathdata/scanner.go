package pathdata

import "strconv"

// segment is one command letter with the raw numbers that followed it.
type segment struct {
	code   byte
	params []float64
}

// arity is the number of parameters consumed by one group of each command.
var arity = map[byte]int{
	'M': 2, 'L': 2, 'T': 2,
	'H': 1, 'V': 1,
	'C': 6,
	'S': 4, 'Q': 4,
	'A': 7,
	'Z': 0,
}

func isCommand(c byte) bool {
	_, ok := arity[upper(c)]
	return ok
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// tokenize splits path text into command segments. Characters that belong
// neither to a command nor to a number are skipped, as are numbers that
// appear before any command or after an unknown letter.
func tokenize(d string) []segment {
	var segs []segment
	var cur *segment
	i := 0
	for i < len(d) {
		c := d[i]
		switch {
		case isCommand(c):
			segs = append(segs, segment{code: c})
			cur = &segs[len(segs)-1]
			i++
		case c == '+' || c == '-' || c == '.' || isDigit(c):
			var (
				v  float64
				ok bool
			)
			if cur != nil && upper(cur.code) == 'A' && isFlagSlot(len(cur.params)) {
				v, i, ok = scanFlag(d, i)
			} else {
				v, i, ok = scanNumber(d, i)
			}
			if ok && cur != nil {
				cur.params = append(cur.params, v)
			}
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			// unknown command: drop its parameters
			cur = nil
			i++
		default:
			i++
		}
	}
	return segs
}

// isFlagSlot reports whether the n-th parameter of an arc is one of the
// two single-character flags.
func isFlagSlot(n int) bool {
	slot := n % 7
	return slot == 3 || slot == 4
}

func scanFlag(d string, i int) (float64, int, bool) {
	switch d[i] {
	case '0':
		return 0, i + 1, true
	case '1':
		return 1, i + 1, true
	}
	return scanNumber(d, i)
}

// scanNumber reads one number starting at i without needing separators:
// "-1.5-2.3" yields -1.5 then -2.3 and "0.5.5" yields 0.5 then .5.
// It returns the index after the consumed text. When the text at i is not a
// valid number, ok is false and at least one character is consumed.
func scanNumber(d string, i int) (v float64, next int, ok bool) {
	start := i
	if i < len(d) && (d[i] == '+' || d[i] == '-') {
		i++
	}
	digits := 0
	for i < len(d) && isDigit(d[i]) {
		i++
		digits++
	}
	if i < len(d) && d[i] == '.' {
		i++
		for i < len(d) && isDigit(d[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, max(i, start+1), false
	}
	end := i
	if i < len(d) && (d[i] == 'e' || d[i] == 'E') {
		// A bare exponent marker is dropped with the number it follows.
		i++
		j := i
		if j < len(d) && (d[j] == '+' || d[j] == '-') {
			j++
		}
		if j < len(d) && isDigit(d[j]) {
			for j < len(d) && isDigit(d[j]) {
				j++
			}
			i, end = j, j
		}
	}
	v, err := strconv.ParseFloat(d[start:end], 64)
	if err != nil {
		return 0, i, false
	}
	return v, i, true
}
