package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShufflePorts(t *testing.T) {
	const first, last = 1000, 1999
	ports := ShufflePorts(first, last)
	require.Len(t, ports, last-first+1)

	// a permutation keeps the range sum
	var sum int
	for _, p := range ports {
		require.GreaterOrEqual(t, p, uint16(first))
		require.LessOrEqual(t, p, uint16(last))
		sum += int(p)
	}
	require.Equal(t, (first+last)*(last-first+1)/2, sum)
}

func TestShufflePortsSinglePort(t *testing.T) {
	require.Equal(t, []uint16{443}, ShufflePorts(443, 443))
}

func TestTimeAdderAverages(t *testing.T) {
	a := NewTimeAdder("test", 4)
	for i := 0; i < 7; i++ {
		a.Add(10)
	}
	require.EqualValues(t, 70, a.sum)
	require.EqualValues(t, 7, a.count)
}
