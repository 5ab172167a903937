package usecase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"textbook-tutor/internal/domain/entity"
)

type runResult struct {
	FinalOutput any
	Output      any
	Content     any
}

type outputOnly struct {
	Output string
}

type opaque struct {
	Steps int
}

type runRepr struct{ text string }

func (r runRepr) String() string { return r.text }

func TestExtractAnswer(t *testing.T) {
	s := "pointer answer"

	tests := []struct {
		name   string
		result entity.GenerationResult
		want   string
	}{
		{"agent output", &entity.AgentOutput{FinalOutput: "ROS2 is a robotics middleware."}, "ROS2 is a robotics middleware."},
		{"final output wins over others", runResult{FinalOutput: "final", Output: "output", Content: "content"}, "final"},
		{"output when final is nil", runResult{Output: "output", Content: "content"}, "output"},
		{"content only", runResult{Content: "content"}, "content"},
		{"non-string final output is stringified", runResult{FinalOutput: 42}, "42"},
		{"pointer to string", runResult{FinalOutput: &s}, "pointer answer"},
		{"struct with only output field", outputOnly{Output: "just output"}, "just output"},
		{"map final_output", map[string]any{"final_output": "from map"}, "from map"},
		{"map skips nil entries", map[string]any{"final_output": nil, "content": "map content"}, "map content"},
		{"plain string", "plain", "plain"},
		{"string is trimmed", "  padded \n", "padded"},
		{"marker with delimiter", runRepr{"RunResult: Final output (str): Hello there - 3 new items"}, "Hello there"},
		{"marker at end", runRepr{"RunResult: Final output (str):  Bye "}, "Bye"},
		{"no marker returns raw", runRepr{"something else"}, "something else"},
		{"opaque struct is stringified", opaque{Steps: 3}, "{3}"},
		{"nil result", nil, ""},
		{"nil agent output", (*entity.AgentOutput)(nil), ""},
		{"whitespace only", &entity.AgentOutput{FinalOutput: "   \n\t"}, ""},
		{"no fields set", runResult{}, "{<nil> <nil> <nil>}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAnswer(tt.result))
		})
	}
}

func TestExtractAnswer_NeverPanics(t *testing.T) {
	inputs := []entity.GenerationResult{
		nil,
		"",
		0,
		[]string{"a", "b"},
		map[int]string{1: "x"},
		map[string]any{},
		map[string]string{"content": "typed map"},
		errors.New("an error value"),
		struct{ finalOutput string }{"unexported"},
		&runResult{Output: []byte("bytes")},
		func() {},
		make(chan int),
		wrappedOutput{Steps: 1},
		&wrappedOutput{},
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() { _ = ExtractAnswer(in) })
	}

	assert.Equal(t, "typed map", ExtractAnswer(map[string]string{"content": "typed map"}))
	assert.Equal(t, "bytes", ExtractAnswer(&runResult{Output: []byte("bytes")}))
	assert.Equal(t, "an error value", ExtractAnswer(errors.New("an error value")))
}

// wrappedOutput promotes the answer fields through an embedded pointer.
type wrappedOutput struct {
	*entity.AgentOutput
	Steps int
}

func TestExtractAnswer_EmbeddedOutput(t *testing.T) {
	assert.Equal(t, "promoted", ExtractAnswer(wrappedOutput{AgentOutput: &entity.AgentOutput{FinalOutput: "promoted"}}))
	assert.Equal(t, "{<nil> 3}", ExtractAnswer(wrappedOutput{Steps: 3}))
}

func TestTokenCount(t *testing.T) {
	assert.Equal(t, 17, TokenCount(&entity.AgentOutput{TokenCount: 17}))
	assert.Equal(t, 0, TokenCount("plain"))
	assert.Equal(t, 0, TokenCount((*entity.AgentOutput)(nil)))
}
