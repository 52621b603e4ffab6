package lib

import (
	"fmt"
	"net"
)

// maxStateTransitions is the number of transitions one record can hold on
// top of the role's implicit starting state. Callers must guarantee a
// connection never records more than this; see PushState.
const maxStateTransitions = 7

// we map cycle differences from u64 to u32 to minimize record size in the cache
const timeStampReductionFactor = 1000

// SockAddr is a compact (IPv4, port) endpoint identity. A zero IP means
// "no remote identity yet".
type SockAddr struct {
	IP   uint32
	Port uint16
}

func (s SockAddr) String() string {
	ip := net.IPv4(byte(s.IP>>24), byte(s.IP>>16), byte(s.IP>>8), byte(s.IP))
	return fmt.Sprintf("%s:%d", ip, s.Port)
}

// ConRecord is the fixed-size state record of one tracked connection. It is
// stored by value inside a store slot and mutated in place; it never owns
// heap memory so slot reuse is a plain overwrite.
type ConRecord struct {
	stamps             [maxStateTransitions - 1]uint32
	state              [maxStateTransitions + 1]uint16
	baseStamp          uint64
	uid                uint64
	sock               SockAddr
	sentPayloadPackets uint32
	recvPayloadPackets uint32
	port               uint16
	serverState        TcpState
	stateCount         uint8
	serverIndex        uint8
	role               TcpRole
	releaseCause       ReleaseCause
}

// Init resets the record for a newly admitted connection. Client records get
// their uid stamped from the cycle counter; server records inherit the uid
// of the paired client record later via SetUid.
func (r *ConRecord) Init(role TcpRole, port uint16, sock SockAddr) {
	r.port = port
	r.stateCount = 1
	r.state[0] = uint16(role.StartState())
	r.baseStamp = 0
	r.sentPayloadPackets = 0
	r.recvPayloadPackets = 0
	if role == TcpRoleClient {
		r.uid = Cycles()
	} else {
		r.uid = 0
	}
	r.serverIndex = 0
	r.serverState = role.Peer().StartState()
	r.releaseCause = CauseUnknown
	r.sock = sock
	r.role = role
}

// Reset returns the record to its pristine default, as held by an unissued
// store slot.
func (r *ConRecord) Reset() {
	*r = ConRecord{}
}

// PushState appends a state transition and stamps it. The first transition
// records an absolute base stamp; later ones record the cycle delta from the
// base, scaled down and truncated to 32 bits. Exceeding the transition
// capacity is a caller bug and panics.
func (r *ConRecord) PushState(state TcpState) {
	if int(r.stateCount) >= len(r.state) {
		panic(fmt.Sprintf("ConRecord.PushState: state history overflow (%d transitions) on %s uid %d",
			maxStateTransitions, r.role, r.uid))
	}
	r.state[r.stateCount] = uint16(state)
	if r.stateCount == 1 {
		r.baseStamp = Cycles()
	} else {
		r.stamps[r.stateCount-2] = uint32((Cycles() - r.baseStamp) / timeStampReductionFactor)
	}
	r.stateCount++
}

// LastState returns the most recent state, the implicit starting state if
// nothing has been pushed yet.
func (r *ConRecord) LastState() TcpState {
	return TcpState(r.state[r.stateCount-1])
}

// States reconstructs the visible state sequence, starting state included.
func (r *ConRecord) States() []TcpState {
	result := make([]TcpState, r.stateCount)
	for i := uint8(0); i < r.stateCount; i++ {
		result[i] = TcpState(r.state[i])
	}
	return result
}

// FirstStamp returns the base cycle stamp, valid once at least one
// transition has been recorded.
func (r *ConRecord) FirstStamp() (uint64, bool) {
	if r.stateCount > 1 {
		return r.baseStamp, true
	}
	return 0, false
}

// LastStamp returns the cycle stamp of the most recent transition,
// reconstructed from the stored delta.
func (r *ConRecord) LastStamp() (uint64, bool) {
	switch r.stateCount {
	case 0, 1:
		return 0, false
	case 2:
		return r.baseStamp, true
	default:
		return r.baseStamp + uint64(r.stamps[r.stateCount-3])*timeStampReductionFactor, true
	}
}

// DeltasSinceSynSent returns the scaled stamp deltas recorded after the
// handshake-opening transition, for reporting.
func (r *ConRecord) DeltasSinceSynSent() []uint32 {
	if r.stateCount >= 3 {
		deltas := make([]uint32, r.stateCount-3)
		copy(deltas, r.stamps[:r.stateCount-3])
		return deltas
	}
	return nil
}

func (r *ConRecord) Role() TcpRole { return r.role }

func (r *ConRecord) Port() uint16        { return r.port }
func (r *ConRecord) SetPort(port uint16) { r.port = port }

// Sock returns the tracked remote endpoint; ok is false while the identity
// is still unset.
func (r *ConRecord) Sock() (SockAddr, bool) {
	if r.sock.IP == 0 {
		return SockAddr{}, false
	}
	return r.sock, true
}

func (r *ConRecord) SetSock(sock SockAddr) { r.sock = sock }

func (r *ConRecord) Uid() uint64       { return r.uid }
func (r *ConRecord) SetUid(uid uint64) { r.uid = uid }

func (r *ConRecord) ServerIndex() uint8         { return r.serverIndex }
func (r *ConRecord) SetServerIndex(index uint8) { r.serverIndex = index }

func (r *ConRecord) ServerState() TcpState         { return r.serverState }
func (r *ConRecord) SetServerState(state TcpState) { r.serverState = state }

// SetReleaseCause records the teardown reason. Meant to be set exactly once.
func (r *ConRecord) SetReleaseCause(cause ReleaseCause) { r.releaseCause = cause }
func (r *ConRecord) ReleaseCause() ReleaseCause         { return r.releaseCause }

func (r *ConRecord) IncrementSentPayload() uint32 {
	r.sentPayloadPackets++
	return r.sentPayloadPackets
}

func (r *ConRecord) IncrementRecvPayload() uint32 {
	r.recvPayloadPackets++
	return r.recvPayloadPackets
}

func (r *ConRecord) SentPayloadPackets() uint32 { return r.sentPayloadPackets }
func (r *ConRecord) RecvPayloadPackets() uint32 { return r.recvPayloadPackets }

func (r *ConRecord) String() string {
	sock := "none"
	if s, ok := r.Sock(); ok {
		sock = s.String()
	}
	return fmt.Sprintf("(%s, %21s, %6d, %3d, %v, %s, %d, %v)",
		r.role, sock, r.port, r.serverIndex, r.States(), r.releaseCause,
		r.baseStamp, r.DeltasSinceSynSent())
}
