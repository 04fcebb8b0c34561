package dataset

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/hupe1980/lloyd/model"
	"github.com/spf13/cast"
)

// pointPattern matches "(x, y)" with optional parentheses and whitespace.
// It is deliberately unanchored: the first matching pair on a line wins.
var pointPattern = regexp.MustCompile(`\(?\s*(-?\d+\.?\d*)\s*,\s*(-?\d+\.?\d*)\s*\)?`)

// ParseResult holds the outcome of parsing user supplied points.
type ParseResult struct {
	// Points are the valid points, in input order.
	Points []model.Point
	// Added is the number of valid lines.
	Added int
	// Errors is the number of non-blank lines that could not be parsed.
	Errors int
}

// Parse extracts one point per non-blank line of text.
// It never fails; malformed or non-finite lines are counted and skipped.
func Parse(text string) ParseResult {
	var res ParseResult
	for _, line := range strings.Split(text, "\n") {
		res.addLine(line)
	}
	return res
}

// ParseReader is like Parse but reads lines from r.
// Only errors from r itself are returned.
func ParseReader(r io.Reader) (ParseResult, error) {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		res.addLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// ParseLine parses a single "(x, y)" line.
func ParseLine(line string) (model.Point, bool) {
	m := pointPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return model.Point{}, false
	}

	x, err := cast.ToFloat64E(m[1])
	if err != nil {
		return model.Point{}, false
	}
	y, err := cast.ToFloat64E(m[2])
	if err != nil {
		return model.Point{}, false
	}

	p := model.Point{X: x, Y: y}
	if !p.IsFinite() {
		return model.Point{}, false
	}
	return p, true
}

func (res *ParseResult) addLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	p, ok := ParseLine(line)
	if !ok {
		res.Errors++
		return
	}
	res.Points = append(res.Points, p)
	res.Added++
}
