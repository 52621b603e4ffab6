package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordInitRoles(t *testing.T) {
	var rec ConRecord

	rec.Init(TcpRoleClient, 40000, SockAddr{IP: 0x0a000001, Port: 80})
	require.Equal(t, TcpRoleClient, rec.Role())
	require.Equal(t, TcpClosed, rec.LastState())
	require.NotZero(t, rec.Uid(), "client records stamp their own uid")
	require.Equal(t, TcpListen, rec.ServerState())

	rec.Init(TcpRoleServer, 80, SockAddr{IP: 0x0a000002, Port: 40000})
	require.Equal(t, TcpListen, rec.LastState())
	require.Zero(t, rec.Uid(), "server records inherit the uid later")
	require.Equal(t, TcpClosed, rec.ServerState())
}

func TestRecordStateHistory(t *testing.T) {
	var rec ConRecord
	rec.Init(TcpRoleClient, 40000, SockAddr{})

	transitions := []TcpState{TcpSynSent, TcpEstablished, TcpFinWait, TcpClosing, TcpTimeWait}
	for _, st := range transitions {
		rec.PushState(st)
	}

	states := rec.States()
	require.Len(t, states, len(transitions)+1, "implicit starting state is included")
	require.Equal(t, TcpClosed, states[0])
	for i, st := range transitions {
		require.Equal(t, st, states[i+1])
	}
	require.Equal(t, TcpTimeWait, rec.LastState())

	first, ok := rec.FirstStamp()
	require.True(t, ok)
	last, ok := rec.LastStamp()
	require.True(t, ok)
	require.GreaterOrEqual(t, last, first)
}

func TestRecordStampsBeforeTransitions(t *testing.T) {
	var rec ConRecord
	rec.Init(TcpRoleServer, 80, SockAddr{})

	_, ok := rec.FirstStamp()
	require.False(t, ok)
	_, ok = rec.LastStamp()
	require.False(t, ok)

	rec.PushState(TcpSynReceived)
	first, ok := rec.FirstStamp()
	require.True(t, ok)
	last, ok := rec.LastStamp()
	require.True(t, ok)
	require.Equal(t, first, last, "a single transition has only the base stamp")
}

func TestRecordHistoryOverflowPanics(t *testing.T) {
	var rec ConRecord
	rec.Init(TcpRoleClient, 40000, SockAddr{})

	for i := 0; i < maxStateTransitions; i++ {
		rec.PushState(TcpEstablished)
	}
	require.Panics(t, func() {
		rec.PushState(TcpTimeWait)
	})
}

func TestRecordCountersAndReleaseCause(t *testing.T) {
	var rec ConRecord
	rec.Init(TcpRoleClient, 40000, SockAddr{})

	require.EqualValues(t, 1, rec.IncrementSentPayload())
	require.EqualValues(t, 2, rec.IncrementSentPayload())
	require.EqualValues(t, 1, rec.IncrementRecvPayload())
	require.EqualValues(t, 2, rec.SentPayloadPackets())
	require.EqualValues(t, 1, rec.RecvPayloadPackets())

	require.Equal(t, CauseUnknown, rec.ReleaseCause())
	rec.SetReleaseCause(CauseActiveClose)
	require.Equal(t, CauseActiveClose, rec.ReleaseCause())
}

func TestRecordSock(t *testing.T) {
	var rec ConRecord
	rec.Init(TcpRoleClient, 40000, SockAddr{})

	_, ok := rec.Sock()
	require.False(t, ok, "zero address means no remote identity yet")

	rec.SetSock(SockAddr{IP: 0xc0a80001, Port: 443})
	sock, ok := rec.Sock()
	require.True(t, ok)
	require.Equal(t, "192.168.0.1:443", sock.String())
}
