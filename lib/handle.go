package lib

// ConnHandle is a lightweight capability on one tracked connection: a
// shared store reference plus the connection's logical slot. Handles never
// own the record; every operation resolves the slot through the store,
// mutates in place and returns. Several handles may alias one slot (for
// instance the client-side and proxied server-side view of one flow) and
// observe each other's mutations; that aliasing stays within one pipeline
// core, so no synchronization is involved.
//
// A handle must not outlive a store wrap; operating on a stale slot is out
// of contract and will dereference an invalid record.
type ConnHandle struct {
	store SimpleStore
	slot  uint64
}

func NewConnHandle(store SimpleStore, slot uint64) ConnHandle {
	return ConnHandle{store: store, slot: slot}
}

// Store exposes the shared store reference, e.g. to derive another handle.
func (h *ConnHandle) Store() SimpleStore { return h.store }

// Slot is the logical slot of the referenced record.
func (h *ConnHandle) Slot() uint64 { return h.slot }

// InUse reports whether the handle still references a store.
func (h *ConnHandle) InUse() bool { return h.store != nil }

// Release drops the store reference. The record itself lives on until the
// store reuses its slot.
func (h *ConnHandle) Release() {
	h.store = nil
	h.slot = 0
}

func (h *ConnHandle) rec() *ConRecord {
	return h.store.Get(h.slot)
}

// ConEstablished records the transition into Established.
func (h *ConnHandle) ConEstablished() {
	h.rec().PushState(TcpEstablished)
}

// ServerSynSent records the proxied server side sending its SYN.
func (h *ConnHandle) ServerSynSent() {
	h.rec().PushState(TcpSynSent)
}

func (h *ConnHandle) PushState(state TcpState) {
	h.rec().PushState(state)
}

func (h *ConnHandle) LastState() TcpState {
	return h.rec().LastState()
}

func (h *ConnHandle) States() []TcpState {
	return h.rec().States()
}

func (h *ConnHandle) SetReleaseCause(cause ReleaseCause) {
	h.rec().SetReleaseCause(cause)
}

func (h *ConnHandle) ReleaseCause() ReleaseCause {
	return h.rec().ReleaseCause()
}

func (h *ConnHandle) Port() uint16 {
	return h.rec().Port()
}

func (h *ConnHandle) SetPort(port uint16) {
	h.rec().SetPort(port)
}

func (h *ConnHandle) Sock() (SockAddr, bool) {
	return h.rec().Sock()
}

func (h *ConnHandle) SetSock(sock SockAddr) {
	h.rec().SetSock(sock)
}

func (h *ConnHandle) Uid() uint64 {
	return h.rec().Uid()
}

func (h *ConnHandle) SetUid(uid uint64) {
	h.rec().SetUid(uid)
}

func (h *ConnHandle) ServerIndex() uint8 {
	return h.rec().ServerIndex()
}

func (h *ConnHandle) SetServerIndex(index uint8) {
	h.rec().SetServerIndex(index)
}

func (h *ConnHandle) ServerState() TcpState {
	return h.rec().ServerState()
}

func (h *ConnHandle) SetServerState(state TcpState) {
	h.rec().SetServerState(state)
}

func (h *ConnHandle) IncrementSentPayload() uint32 {
	return h.rec().IncrementSentPayload()
}

func (h *ConnHandle) IncrementRecvPayload() uint32 {
	return h.rec().IncrementRecvPayload()
}

func (h *ConnHandle) SentPayloadPackets() uint32 {
	return h.rec().SentPayloadPackets()
}

func (h *ConnHandle) RecvPayloadPackets() uint32 {
	return h.rec().RecvPayloadPackets()
}
