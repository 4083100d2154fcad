package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FormatAnswer renders one answer value as display text. Used by the
// response table, the free-text analytics previews and the CSV exporter so
// all three agree on what an answer looks like.
func FormatAnswer(v any) string {
	switch answer := v.(type) {
	case nil:
		return "-"
	case bool:
		if answer {
			return YesLabel
		}
		return NoLabel
	case []any:
		parts := make([]string, len(answer))
		for i, elem := range answer {
			parts[i] = Stringify(elem)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(answer, ", ")
	case FileUpload:
		return answer.Name
	case map[string]any:
		if file, ok := AsFileUpload(answer); ok {
			return file.Name
		}
		text, err := json.Marshal(answer)
		if err != nil {
			return fmt.Sprint(answer)
		}
		return string(text)
	default:
		return Stringify(v)
	}
}

// Stringify renders a scalar the way the charts label it: JSON numbers
// print without a trailing ".0".
func Stringify(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	default:
		return fmt.Sprint(v)
	}
}
