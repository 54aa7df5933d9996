package marble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/marblesim/sim/internal/testutil"
	"github.com/inference-sim/marblesim/sim/marble"
)

func TestCompile_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Diagrams)

	for _, g := range dataset.Diagrams {
		t.Run(g.Name, func(t *testing.T) {
			got, err := marble.Compile(g.Diagram, g.Values, g.Error)
			require.NoError(t, err)
			testutil.AssertEventsEqual(t, g.Name, g.TimedEvents(t), got)
		})
	}
}

func TestRender_GoldenDataset_RecompilesToSameEvents(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)

	for _, g := range dataset.Diagrams {
		t.Run(g.Name, func(t *testing.T) {
			// GIVEN the compiled golden events
			want := g.TimedEvents(t)

			// WHEN rendered and compiled again with the same symbol table
			d, err := marble.Render(want, g.Values)
			require.NoError(t, err)
			got, err := marble.Compile(d, g.Values, g.Error)

			// THEN nothing moved
			require.NoError(t, err)
			testutil.AssertEventsEqual(t, g.Name+" via "+d, want, got)
		})
	}
}

func TestCompileWindow_GoldenDataset(t *testing.T) {
	dataset := testutil.LoadGoldenDataset(t)
	require.NotEmpty(t, dataset.Windows)

	for _, g := range dataset.Windows {
		t.Run(g.Name, func(t *testing.T) {
			got, err := marble.CompileWindow(g.Diagram)
			require.NoError(t, err)
			assert.Equal(t, g.Window(), got)
		})
	}
}
