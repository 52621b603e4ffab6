package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSockIndexInsertGetRemove(t *testing.T) {
	idx := NewSock2Index()
	sock := SockAddr{IP: 0x0a000001, Port: 40000}

	_, ok := idx.Get(sock)
	require.False(t, ok)

	idx.Insert(sock, 17)
	slot, ok := idx.Get(sock)
	require.True(t, ok)
	require.EqualValues(t, 17, slot)

	old, ok := idx.Remove(sock)
	require.True(t, ok)
	require.EqualValues(t, 17, old)

	_, ok = idx.Get(sock)
	require.False(t, ok)
	_, ok = idx.Remove(sock)
	require.False(t, ok, "second remove is a miss, not an error")
}

func TestSockIndexSlotZero(t *testing.T) {
	idx := NewSock2Index()
	sock := SockAddr{IP: 0x0a000001, Port: 1}

	idx.Insert(sock, 0)
	slot, ok := idx.Get(sock)
	require.True(t, ok)
	require.Zero(t, slot, "logical slot 0 is representable")
}

func TestSockIndexPortBoundaries(t *testing.T) {
	idx := NewSock2Index()
	low := SockAddr{IP: 0x0a000001, Port: 1}
	high := SockAddr{IP: 0x0a000001, Port: 0xFFFF}

	idx.Insert(low, 1)
	idx.Insert(high, 2)

	slot, ok := idx.Get(low)
	require.True(t, ok)
	require.EqualValues(t, 1, slot)
	slot, ok = idx.Get(high)
	require.True(t, ok)
	require.EqualValues(t, 2, slot)
}

func TestSockIndexPortZeroPanics(t *testing.T) {
	idx := NewSock2Index()
	require.Panics(t, func() { idx.Get(SockAddr{IP: 1, Port: 0}) })
	require.Panics(t, func() { idx.Insert(SockAddr{IP: 1, Port: 0}, 1) })
	require.Panics(t, func() { idx.Remove(SockAddr{IP: 1, Port: 0}) })
}

func TestSockIndexBankExhaustion(t *testing.T) {
	idx := NewSock2Index()
	for ip := uint32(1); ip <= 8; ip++ {
		idx.Insert(SockAddr{IP: ip, Port: 100}, uint64(ip))
	}
	// existing IPs keep working after all banks are claimed
	idx.Insert(SockAddr{IP: 3, Port: 200}, 33)

	require.Panics(t, func() {
		idx.Insert(SockAddr{IP: 9, Port: 100}, 9)
	})
}

func TestSockIndexValuesOrder(t *testing.T) {
	idx := NewSock2Index()
	// inserted out of order; Values walks IPs ascending, ports ascending
	idx.Insert(SockAddr{IP: 2, Port: 50}, 20)
	idx.Insert(SockAddr{IP: 1, Port: 70}, 12)
	idx.Insert(SockAddr{IP: 1, Port: 10}, 11)
	idx.Insert(SockAddr{IP: 2, Port: 40}, 21)

	require.Equal(t, []uint64{11, 12, 21, 20}, idx.Values())
}

func TestSockIndexBankNotReclaimed(t *testing.T) {
	idx := NewSock2Index()
	for ip := uint32(1); ip <= 8; ip++ {
		idx.Insert(SockAddr{IP: ip, Port: 100}, uint64(ip))
		idx.Remove(SockAddr{IP: ip, Port: 100})
	}
	// all entries removed, but the banks stay assigned to their IPs
	require.Panics(t, func() {
		idx.Insert(SockAddr{IP: 9, Port: 100}, 9)
	})
}
