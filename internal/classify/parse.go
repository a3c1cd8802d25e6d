package classify

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// StripFences removes markdown code fences around a JSON answer and any
// prose before the first '{' or after the last '}'.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// Parse decodes a model answer and checks it against req. Unknown or repeated
// tags are dropped and at most MaxTags kept; a type outside the allowed
// types makes the answer invalid.
func Parse(raw string, req Request) (Result, error) {
	var res Result
	if err := json.Unmarshal([]byte(StripFences(raw)), &res); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	res.Type = strings.TrimSpace(res.Type)
	if !slices.Contains(req.Types, res.Type) {
		return Result{}, fmt.Errorf("%w: type %q not allowed", ErrInvalidResponse, res.Type)
	}

	tags := make([]string, 0, MaxTags)
	for _, t := range res.Tags {
		t = strings.TrimSpace(t)
		if !slices.Contains(req.Tags, t) || slices.Contains(tags, t) {
			continue
		}
		tags = append(tags, t)
		if len(tags) == MaxTags {
			break
		}
	}
	res.Tags = tags
	return res, nil
}
