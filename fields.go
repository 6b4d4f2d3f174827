package inp

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/paulmach/orb"
)

// fieldReader gives positional access to tokens of one line.
// The first failed access is remembered and every next access becomes a no-op,
// so a handler can read all of its fields and check the error once.
type fieldReader struct {
	tokens []string
	err    error
}

func readFields(tokens []string) *fieldReader {
	return &fieldReader{tokens: tokens}
}

func (f *fieldReader) fail(idx int, reason string) {
	if f.err != nil {
		return
	}
	f.err = &FormatError{Keyword: f.tokens[0], Index: idx, Have: len(f.tokens), Reason: reason}
}

func (f *fieldReader) str(idx int) string {
	if f.err != nil {
		return ""
	}
	if idx >= len(f.tokens) {
		f.fail(idx, "")
		return ""
	}
	return f.tokens[idx]
}

func (f *fieldReader) int(idx int) int {
	s := f.str(idx)
	if f.err != nil {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f.fail(idx, "should be an integer, got '"+s+"'")
		return 0
	}
	return v
}

func (f *fieldReader) float(idx int) float64 {
	s := f.str(idx)
	if f.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.fail(idx, "should be a number, got '"+s+"'")
		return 0
	}
	return v
}

// point reads X at idx and Y at idx+1
func (f *fieldReader) point(idx int) orb.Point {
	return orb.Point{f.float(idx), f.float(idx + 1)}
}

// ints reads every token in [from; to) as an integer
func (f *fieldReader) ints(from, to int) []int {
	res := make([]int, 0, f.span(from, to))
	for i := from; i < to && f.err == nil; i++ {
		res = append(res, f.int(i))
	}
	return res
}

func (f *fieldReader) strs(from, to int) []string {
	res := make([]string, 0, f.span(from, to))
	for i := from; i < to && f.err == nil; i++ {
		res = append(res, f.str(i))
	}
	return res
}

// span is the number of tokens present in [from; to)
func (f *fieldReader) span(from, to int) int {
	if to > len(f.tokens) {
		to = len(f.tokens)
	}
	if from < 0 || to < from {
		return 0
	}
	return to - from
}

// overPoints reads `OVER x y z` groups: a group takes four tokens, the z-coordinate is dropped
func (f *fieldReader) overPoints() []orb.Point {
	size := len(f.tokens) / 4
	pts := make([]orb.Point, 0, size)
	for i := 0; i < size; i++ {
		pts = append(pts, f.point(4*i+1))
	}
	return pts
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// rjust pads s with leading spaces up to width characters
func rjust(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// ljust pads s with trailing spaces up to width characters
func ljust(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// formatCoord renders a coordinate the way the network editor does: shortest form, at least one decimal digit
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func joinInts(values []int, sep string) string {
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = strconv.Itoa(v)
	}
	return strings.Join(strs, sep)
}

// maxKey returns the biggest key of the given ids. ok is false for an empty set.
func maxKey(ids []int) (int, bool) {
	if len(ids) == 0 {
		return 0, false
	}
	biggest := ids[0]
	for _, id := range ids[1:] {
		if id > biggest {
			biggest = id
		}
	}
	return biggest, true
}
