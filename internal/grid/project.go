// Package grid projects ASCII drawn maps onto geographic coordinates.
//
// Every alphanumeric character of the drawing becomes a node. Columns step east
// and rows step south from the top left coordinate, one cell per character.
package grid

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// EarthMeanRadius is the mean earth radius in meters used for the flat grid approximation
const EarthMeanRadius = 6371008.8

// DegreesPerCell returns the angular size of one grid character
func DegreesPerCell(cellSize float64) float64 {
	metersToDegrees := 1 / (math.Pi / 180 * EarthMeanRadius)
	return cellSize * metersToDegrees
}

// Project parses an ASCII map into a layout. cellSize is the size of one
// character in meters and topLeft the coordinate of the first column of the
// first non-blank line.
//
// Leading blank lines are dropped and common indentation is removed, so maps
// can be written as indented multi-line literals. When a character is drawn
// more than once the last occurrence wins.
func Project(text string, cellSize float64, topLeft orb.Point) *Layout {
	layout := NewLayout()
	lines := dedent(strings.Split(text, "\n"))

	step := DegreesPerCell(cellSize)
	for y, line := range lines {
		for x := 0; x < len(line); x++ {
			ch := line[x]
			if !isAlnum(ch) {
				continue
			}
			lon := topLeft.Lon() + step*float64(x)
			lat := topLeft.Lat() - step*float64(y)
			layout.Set(string(ch), orb.Point{lon, lat})
		}
	}

	return layout
}

// dedent drops leading blank lines and strips the minimum indentation of the
// non-blank lines from every line long enough to have it.
func dedent(lines []string) []string {
	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return nil
	}

	indent := math.MaxInt
	for _, line := range lines {
		// Blank lines may have no indentation at all
		if isBlank(line) {
			continue
		}
		indent = min(indent, leadingSpace(line))
		if indent == 0 {
			break
		}
	}
	if indent == math.MaxInt || indent == 0 {
		return lines
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) < indent {
			out[i] = line
			continue
		}
		out[i] = line[indent:]
	}
	return out
}

func leadingSpace(line string) int {
	for i := 0; i < len(line); i++ {
		if !isSpace(line[i]) {
			return i
		}
	}
	return len(line)
}

func isBlank(line string) bool {
	return leadingSpace(line) == len(line)
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isAlnum(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}
