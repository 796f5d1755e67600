package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenSwap/internal/model"
)

func TestJournalDrainReleasesEvents(t *testing.T) {
	j := NewJournal(10)
	for i := 0; i < 1000; i++ {
		j.append(model.EventPoolClosed, uint64(i), nil)
		drained := j.Drain()
		require.Len(t, drained, 1)
		assert.Equal(t, uint64(11+i), drained[0].Seq)
	}

	assert.Empty(t, j.Since(0))
	assert.Empty(t, j.Drain())
	assert.Equal(t, uint64(1010), j.LastSeq())

	j.append(model.EventPoolClosed, 1, nil)
	j.append(model.EventPoolClosed, 2, nil)
	assert.Len(t, j.Since(1010), 2)
	assert.Len(t, j.Since(1011), 1)
	assert.Len(t, j.Drain(), 2)
	assert.Empty(t, j.Since(0))
}
