package metrics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHistogramIgnoresEmpty(t *testing.T) {
	t.Parallel()
	e := NewErrorHistogram()
	e.Record("")
	assert.Empty(t, e.Snapshot())
}

func TestErrorHistogramTruncatesLongMessages(t *testing.T) {
	t.Parallel()
	e := NewErrorHistogram()
	long := strings.Repeat("x", 150)
	e.Record(long)

	snap := e.Snapshot()
	require := assert.New(t)
	for k := range snap {
		require.LessOrEqual(len(k), errorKeyMaxLen+len("…"))
		require.True(strings.HasSuffix(k, "…"))
	}
}

func TestErrorHistogramCollapsesOverflowIntoOther(t *testing.T) {
	t.Parallel()
	e := NewErrorHistogram()
	for i := 0; i < errorHistogramTopK+10; i++ {
		e.Record(fmt.Sprintf("distinct error %d", i))
	}
	snap := e.Snapshot()
	// errorHistogramTopK distinct messages plus the "other" bucket.
	assert.LessOrEqual(t, len(snap), errorHistogramTopK+1)
	assert.Equal(t, int64(10), snap[otherErrorKey])
}

func TestErrorHistogramReset(t *testing.T) {
	t.Parallel()
	e := NewErrorHistogram()
	e.Record("boom")
	e.Reset()
	assert.Empty(t, e.Snapshot())
}
