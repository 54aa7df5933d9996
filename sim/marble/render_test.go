package marble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_RoundTrip(t *testing.T) {
	for _, d := range []string{
		"-a-(bc)--|",
		"a",
		"--x-y-#",
		"(ab)(cd)|",
		"",
	} {
		t.Run(d, func(t *testing.T) {
			events := MustCompile(d, nil, nil)
			got, err := Render(events, nil)
			require.NoError(t, err)
			assert.Equal(t, d, got)
			assert.Equal(t, events, MustCompile(got, nil, nil))
		})
	}
}

func TestRender_MapsValuesBackToSymbols(t *testing.T) {
	values := Values{"a": "ABC", "b": 42}
	events := MustCompile("-a--b|", values, nil)

	got, err := Render(events, values)
	require.NoError(t, err)
	assert.Equal(t, "-a--b|", got)
}

func TestRender_Failures(t *testing.T) {
	tests := []struct {
		name   string
		events []TimedEvent
	}{
		{"unaligned frame", []TimedEvent{At(15, Next("a"))}},
		{"decreasing frames", []TimedEvent{At(20, Next("a")), At(10, Next("b"))}},
		{"multi-character value", []TimedEvent{At(0, Next("abc"))}},
		{"reserved character value", []TimedEvent{At(0, Next("-"))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Render(tt.events, nil)
			assert.Error(t, err)
		})
	}
}

func TestNotification_String(t *testing.T) {
	assert.Equal(t, "next(a)", Next("a").String())
	assert.Equal(t, "error(boom)", Error("boom").String())
	assert.Equal(t, "done", Done().String())
	assert.Equal(t, "30:next(a)", At(30, Next("a")).String())
	assert.True(t, Done().IsTerminal())
	assert.False(t, Next(1).IsTerminal())
}
