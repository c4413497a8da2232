package telegram

import (
	"regexp"
	"strings"
)

// DataPoint is one decoded OBIS code and its raw value text.
type DataPoint struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

// Data lines start with an OBIS code: group-group:group.group.group
var obisPattern = regexp.MustCompile(`^\d+-\d+:\d+\.\d+\.\d+`)

var valueReplacer = strings.NewReplacer("(", " ", ")", " ")

// DecodeLine extracts the OBIS code and value from one telegram line.
// Lines without a leading OBIS code (identification header, trailer, noise)
// yield ok=false; that is not an error. The value is the remainder of the
// line with the parentheses replaced by spaces and the result trimmed, so
// multi-field lines flatten to a single space-separated string.
func DecodeLine(line string) (point DataPoint, ok bool) {
	code := obisPattern.FindString(line)
	if code == "" {
		return DataPoint{}, false
	}
	value := strings.TrimSpace(valueReplacer.Replace(line[len(code):]))
	return DataPoint{Code: code, Value: value}, true
}

// DecodeTelegram decodes every data line of a verified telegram, in order.
func DecodeTelegram(telegram string) []DataPoint {
	var points []DataPoint
	for _, line := range strings.Split(telegram, "\r\n") {
		if point, ok := DecodeLine(line); ok {
			points = append(points, point)
		}
	}
	return points
}
