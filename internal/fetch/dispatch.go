package fetch

import (
	"bytes"
	"encoding/json"
	"regexp"
)

// jsonpCall matches `name(args)` with an optional leading /**/ and trailing
// semicolon. The argument group is greedy so parentheses inside strings stay
// in the payload.
var jsonpCall = regexp.MustCompile(`^\s*(?:/\*\*/)?\s*([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)\s*\(([\s\S]*)\)\s*;?\s*$`)

// Dispatch routes a loaded response body to the registry. A script body
// resolves the token it names; a bare JSON body resolves self, and fires
// nothing when self is empty. It reports whether a registered callback fired.
func Dispatch(reg *Registry, body []byte, self string) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}

	if json.Valid(trimmed) {
		if self == "" {
			return false
		}
		return reg.Resolve(self, json.RawMessage(trimmed))
	}

	m := jsonpCall.FindSubmatch(trimmed)
	if m == nil {
		return false
	}
	name, args := string(m[1]), bytes.TrimSpace(m[2])
	if len(args) == 0 {
		args = []byte("null")
	}
	return reg.Resolve(name, json.RawMessage(args))
}
