package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The numeric values below are part of the record encoding; a reorder of
// the const blocks would silently corrupt persisted histories.
func TestTcpStateEncoding(t *testing.T) {
	require.EqualValues(t, 0, TcpClosed)
	require.EqualValues(t, 1, TcpListen)
	require.EqualValues(t, 2, TcpSynSent)
	require.EqualValues(t, 3, TcpSynReceived)
	require.EqualValues(t, 4, TcpEstablished)
	require.EqualValues(t, 5, TcpFinWait)
	require.EqualValues(t, 6, TcpClosing)
	require.EqualValues(t, 7, TcpLastAck)
	require.EqualValues(t, 8, TcpTimeWait)
}

func TestReleaseCauseEncoding(t *testing.T) {
	require.EqualValues(t, 0, CauseUnknown)
	require.EqualValues(t, 1, CauseTimeout)
	require.EqualValues(t, 2, CausePassiveClose)
	require.EqualValues(t, 3, CauseActiveClose)
	require.EqualValues(t, 4, CausePassiveRst)
	require.EqualValues(t, 5, CauseActiveRst)
}

func TestTcpRole(t *testing.T) {
	require.Equal(t, TcpClosed, TcpRoleClient.StartState())
	require.Equal(t, TcpListen, TcpRoleServer.StartState())
	require.Equal(t, TcpRoleServer, TcpRoleClient.Peer())
	require.Equal(t, TcpRoleClient, TcpRoleServer.Peer())
	require.Equal(t, "Client", TcpRoleClient.String())
	require.Equal(t, "Server", TcpRoleServer.String())
}

func TestStringMappings(t *testing.T) {
	require.Equal(t, "SynReceived", TcpSynReceived.String())
	require.Equal(t, "TcpState(99)", TcpState(99).String())
	require.Equal(t, "ActiveRst", CauseActiveRst.String())
	require.Equal(t, "ReleaseCause(42)", ReleaseCause(42).String())
	require.Equal(t, "RecvPayload", RecvPayload.String())
}

func TestTcpCounter(t *testing.T) {
	var c TcpCounter
	require.Equal(t, "(no events)", c.String())

	c.Inc(RecvSyn)
	c.Inc(RecvSyn)
	c.Inc(Unexpected)
	require.EqualValues(t, 2, c.Get(RecvSyn))
	require.EqualValues(t, 0, c.Get(SentSyn))
	require.Equal(t, "RecvSyn= 2, Unexpected= 1", c.String())
}
