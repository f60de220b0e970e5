// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/wxctlgo/internal/config"
)

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr is one column of output, addressed by its key in the row JSON.
type Attr struct {
	// The JSON key to extract from the row.
	Key string
	// Should this Attr be included in output or is it just
	// intended for filtering and sorting?
	Include bool
	// The key to use in the output and the column title for text output.
	OutputKey string
	// Transformation spec to apply to the output value.
	TransformSpec string
}

// Transform applies the attr's transform spec to value.
//
//	f      Celsius to Fahrenheit (numbers)
//	h      RFC3339 time to a relative, humanized time
//	t      RFC3339 time to local time (timezone config value, then TZ)
//	l, u   lower/upper case; the last one wins
//	N, -N  truncate to N, or elide the middle down to N
func (a *Attr) Transform(value interface{}) interface{} {
	if n, ok := toFloat64(value); ok {
		if strings.ContainsAny(a.TransformSpec, "fF") {
			return n*9/5 + 32
		}
		return value
	}

	result, ok := value.(string)
	if !ok {
		return value
	}

	switch {
	case strings.ContainsAny(a.TransformSpec, "hH"):
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			result = humanize.Time(t)
		} else {
			log.Debugf("not a time, skipping humanize: %s", result)
		}
	case strings.ContainsAny(a.TransformSpec, "tT"):
		result = toLocal(result)
	}

	// The case transform that appears last wins. A global spec is prepended
	// to every attr's spec, so an attr's own spec overrides it.
	// IOW...  --attrs '*::U,name::l' will be lower case.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Same override logic for length.
	if match := lengthRegex.FindAllString(a.TransformSpec, -1); len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		result = clip(result, l)
	}

	return result
}

// toLocal converts an RFC3339 time to the configured zone. Without a zone
// the value is returned as is.
func toLocal(s string) string {
	tz, _ := config.GetString("timezone", "")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return s
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Warnf("unknown timezone %s", tz)
		return s
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Debugf("failed to parse time: %s", s)
		return s
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

// clip truncates s to l runes, or for negative l keeps both ends of s around
// a "..".
func clip(s string, l int) string {
	runes := []rune(s)
	abs := int(math.Abs(float64(l)))
	if len(runes) <= abs {
		return s
	}
	if l >= 0 {
		return string(runes[:l])
	}
	side := abs/2 - 1
	if side < 1 {
		return string(runes[:abs])
	}
	return string(runes[:side]) + ".." + string(runes[len(runes)-side:])
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

type AttrList []Attr

// String matches the format of the --attrs flag.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		result = append(result, fmt.Sprintf("%s:%s:%s", attr.Key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses each comma-separated spec from the --attrs flag into the list.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	const (
		jsonIdx = iota
		outputIdx
		transformIdx
	)

	// key[:outputKey[:transform]]. The output key defaults to the last
	// segment of the key.
	specs := strings.Split(value, ",")
specloop:
	for _, spec := range specs {
		attr := Attr{
			Include: true,
		}

		fields := strings.Split(spec, ":")

		// A leading ! keeps the attr for filtering and sorting only.
		attr.Key = strings.TrimSpace(fields[jsonIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}

		if attr.Key == "" {
			continue
		}

		if attr.Key == "*" {
			attr.Include = false
		}

		if len(fields) == 1 || fields[outputIdx] == "" {
			segments := strings.Split(strings.TrimPrefix(attr.Key, "."), ".")
			attr.OutputKey = segments[len(segments)-1]
		} else {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}

		// Respecifying a known attr (a default, or a repeat) just updates it.
		for i := range *a {
			if (*a)[i].Key == attr.Key || (*a)[i].OutputKey == attr.Key ||
				(*a)[i].Key == "attributes."+attr.Key {
				(*a)[i].Include = attr.Include
				(*a)[i].OutputKey = attr.OutputKey
				(*a)[i].TransformSpec = attr.TransformSpec
				continue specloop
			}
		}

		// A leading . addresses the root of the row object; anything else is
		// under its attributes.
		if strings.HasPrefix(attr.Key, ".") {
			attr.Key = attr.Key[1:]
		} else if attr.Key != "*" {
			attr.Key = "attributes." + attr.Key
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the "*" attr's transform spec, if any, to
// every attr in the list.
func (alist *AttrList) SetGlobalTransformSpec() error {
	spec := ""

	for a := range *alist {
		if (*alist)[a].Key == "*" {
			spec = (*alist)[a].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}

	for a := range *alist {
		(*alist)[a].TransformSpec = spec + "," + (*alist)[a].TransformSpec
	}

	return nil
}

// Included is the subset of attrs that are output.
func (alist AttrList) Included() AttrList {
	out := make(AttrList, 0, len(alist))
	for _, a := range alist {
		if a.Include && a.Key != "*" {
			out = append(out, a)
		}
	}
	return out
}

func (a *AttrList) Type() string {
	return "list"
}
