package lib

import (
	"fmt"
	"math/rand"
)

// TimeAdder accumulates hot-path cycle measurements and prints a running
// average every sampleSize additions.
type TimeAdder struct {
	name       string
	sum        uint64
	count      uint64
	sampleSize uint64
}

func NewTimeAdder(name string, sampleSize uint64) *TimeAdder {
	return &TimeAdder{
		name:       name,
		sampleSize: sampleSize,
	}
}

func (t *TimeAdder) Add(timeDiff uint64) {
	t.sum += timeDiff
	t.count++
	if t.count%t.sampleSize == 0 {
		fmt.Printf("TimeAdder %-24s: sum = %12d, count= %9d, per count= %6d\n",
			t.name, t.sum, t.count, t.sum/t.count)
	}
}

// ShufflePorts returns the ports first..last in random order, so a load
// generator does not sweep the port space sequentially.
func ShufflePorts(first, last uint16) []uint16 {
	ports := make([]uint16, 0, int(last)-int(first)+1)
	for p := int(first); p <= int(last); p++ {
		ports = append(ports, uint16(p))
	}
	rand.Shuffle(len(ports), func(i, j int) {
		ports[i], ports[j] = ports[j], ports[i]
	})
	return ports
}
