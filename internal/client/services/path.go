package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// endpoint appends escaped path segments to base, e.g.
// endpoint("/studies/name", "s1") is "/studies/name/s1".
func endpoint(base string, segments ...any) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(fmt.Sprint(s)))
	}
	return b.String()
}

// toMap renders a command struct as the extra fields of an update.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
