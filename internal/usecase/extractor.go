package usecase

import (
	"fmt"
	"reflect"
	"strings"

	"textbook-tutor/internal/domain/entity"
)

const finalOutputMarker = "Final output (str):"

// answerFields is the lookup precedence for structured results.
// Each entry lists the struct field name followed by accepted map keys.
var answerFields = [][]string{
	{"FinalOutput", "final_output", "finalOutput"},
	{"Output", "output"},
	{"Content", "content"},
}

// ExtractAnswer normalizes a provider result into a single answer string.
// It never fails: the worst case is the raw stringification of the result.
// Whitespace-only answers collapse to "".
func ExtractAnswer(result entity.GenerationResult) string {
	return strings.TrimSpace(extractRaw(result))
}

func extractRaw(result entity.GenerationResult) string {
	if isNil(result) {
		return ""
	}

	for _, names := range answerFields {
		if v, ok := lookupField(result, names); ok {
			return stringify(v)
		}
	}

	if s, ok := result.(string); ok {
		return s
	}

	raw := stringify(result)
	if _, after, found := strings.Cut(raw, finalOutputMarker); found {
		segment, _, _ := strings.Cut(after, " - ")
		return segment
	}
	return raw
}

// lookupField finds the first present, non-nil field or map entry.
func lookupField(result any, names []string) (any, bool) {
	v := reflect.ValueOf(result)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		sf, ok := v.Type().FieldByName(names[0])
		if !ok {
			return nil, false
		}
		// Promoted fields behind a nil embedded pointer are absent.
		f, err := v.FieldByIndexErr(sf.Index)
		if err != nil || !f.CanInterface() || isNilValue(f) {
			return nil, false
		}
		return f.Interface(), true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		for _, key := range names[1:] {
			e := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
			if e.IsValid() && !isNilValue(e) {
				return e.Interface(), true
			}
		}
	}
	return nil, false
}

func stringify(v any) string {
	if isNil(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case *string:
		return *t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	return isNilValue(reflect.ValueOf(v))
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// TokenCount reports provider usage when the result carries it.
func TokenCount(result entity.GenerationResult) int {
	if out, ok := result.(*entity.AgentOutput); ok && out != nil {
		return out.TokenCount
	}
	return 0
}
