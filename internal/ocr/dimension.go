package ocr

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	metersPerFoot = 0.3048
	metersPerInch = 0.0254
)

var (
	feetInchRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:'|ft\.?|feet)\s*-?\s*(?:(\d+(?:\.\d+)?)\s*(?:"|in\.?|inches)?)?`)
	inchRe     = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:"|in\.?|inches)$`)
	metricRe   = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(mm|cm|m)\b`)

	quoteReplacer = strings.NewReplacer("’", "'", "′", "'", "‘", "'", "”", `"`, "″", `"`, "“", `"`, "''", `"`)
)

// ParseDimension converts a dimension string to meters.
//
// Accepted forms include feet-inch (12'6", 12' - 6", 12 ft 6 in, 12'),
// inches (30"), and metric with a unit (3.60 m, 360 cm, 3600 mm, 3,6 m).
// Bare numbers are rejected since their unit is unknown.
func ParseDimension(text string) (float64, bool) {
	s := strings.ToLower(quoteReplacer.Replace(strings.TrimSpace(text)))
	if s == "" {
		return 0, false
	}

	if m := feetInchRe.FindStringSubmatch(s); m != nil {
		ft, _ := strconv.ParseFloat(m[1], 64)
		var in float64
		if m[2] != "" {
			in, _ = strconv.ParseFloat(m[2], 64)
		}
		return positive(ft*metersPerFoot + in*metersPerInch)
	}

	if m := inchRe.FindStringSubmatch(s); m != nil {
		in, _ := strconv.ParseFloat(m[1], 64)
		return positive(in * metersPerInch)
	}

	if m := metricRe.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		switch m[2] {
		case "mm":
			v /= 1000
		case "cm":
			v /= 100
		}
		return positive(v)
	}

	return 0, false
}

func positive(v float64) (float64, bool) {
	if v <= 0 {
		return 0, false
	}
	return v, true
}
