package lib

import (
	"fmt"
	"strings"
)

// TcpRole tells which side of a tracked flow a record describes.
type TcpRole uint8

const (
	TcpRoleClient TcpRole = iota
	TcpRoleServer
)

func (r TcpRole) String() string {
	switch r {
	case TcpRoleClient:
		return "Client"
	case TcpRoleServer:
		return "Server"
	default:
		return fmt.Sprintf("TcpRole(%d)", uint8(r))
	}
}

// StartState returns the implicit TCP state a connection of this role is in
// before its first recorded transition.
func (r TcpRole) StartState() TcpState {
	if r == TcpRoleServer {
		return TcpListen
	}
	return TcpClosed
}

// Peer returns the role of the other side of the flow.
func (r TcpRole) Peer() TcpRole {
	if r == TcpRoleClient {
		return TcpRoleServer
	}
	return TcpRoleClient
}

// TcpState is the protocol state of one side of a connection. The numeric
// values are part of the record encoding and must not be reordered.
type TcpState uint16

const (
	TcpClosed TcpState = iota
	TcpListen
	TcpSynSent
	TcpSynReceived
	TcpEstablished
	TcpFinWait
	TcpClosing
	TcpLastAck
	TcpTimeWait
)

var tcpStateNames = [...]string{
	"Closed", "Listen", "SynSent", "SynReceived", "Established",
	"FinWait", "Closing", "LastAck", "TimeWait",
}

func (s TcpState) String() string {
	if int(s) < len(tcpStateNames) {
		return tcpStateNames[s]
	}
	return fmt.Sprintf("TcpState(%d)", uint16(s))
}

// ReleaseCause records why a tracked connection was torn down. Set once at
// teardown; the numeric values are part of the record encoding.
type ReleaseCause uint8

const (
	CauseUnknown ReleaseCause = iota
	CauseTimeout
	CausePassiveClose
	CauseActiveClose
	CausePassiveRst
	CauseActiveRst
)

var releaseCauseNames = [...]string{
	"Unknown", "Timeout", "PassiveClose", "ActiveClose", "PassiveRst", "ActiveRst",
}

func (c ReleaseCause) String() string {
	if int(c) < len(releaseCauseNames) {
		return releaseCauseNames[c]
	}
	return fmt.Sprintf("ReleaseCause(%d)", uint8(c))
}

// TcpStatistics enumerates the per-pipeline event counters.
type TcpStatistics uint8

const (
	SentSyn TcpStatistics = iota
	SentSynAck
	SentSynAck2
	SentAck
	SentFin
	SentFinPssv
	SentRst
	RecvSyn
	RecvSynAck
	RecvSynAck2
	RecvAck
	RecvFin
	RecvFinPssv
	RecvRst
	SentPayload
	RecvPayload
	Unexpected

	tcpStatisticsCount
)

var tcpStatisticsNames = [...]string{
	"SentSyn", "SentSynAck", "SentSynAck2", "SentAck", "SentFin", "SentFinPssv",
	"SentRst", "RecvSyn", "RecvSynAck", "RecvSynAck2", "RecvAck", "RecvFin",
	"RecvFinPssv", "RecvRst", "SentPayload", "RecvPayload", "Unexpected",
}

func (s TcpStatistics) String() string {
	if int(s) < len(tcpStatisticsNames) {
		return tcpStatisticsNames[s]
	}
	return fmt.Sprintf("TcpStatistics(%d)", uint8(s))
}

// TcpCounter is a fixed array of event counters for one side of a pipeline.
// It is copied by value into report messages, never shared live.
type TcpCounter [tcpStatisticsCount]uint64

func (c *TcpCounter) Inc(kind TcpStatistics) {
	c[kind]++
}

func (c *TcpCounter) Get(kind TcpStatistics) uint64 {
	return c[kind]
}

func (c TcpCounter) String() string {
	var b strings.Builder
	for i := TcpStatistics(0); i < tcpStatisticsCount; i++ {
		if c[i] == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s= %d", i, c[i])
	}
	if b.Len() == 0 {
		return "(no events)"
	}
	return b.String()
}
