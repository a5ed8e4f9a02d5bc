package utils

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PrettyJson indents any value, or raw JSON bytes, for terminal output
func PrettyJson(in any) string {
	if raw, ok := in.([]byte); ok {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return string(raw)
		}
		in = v
	}

	out, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", in)
	}

	return string(out)
}
