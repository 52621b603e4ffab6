package lib

import (
	rp "github.com/Clouded-Sabre/ringpool/lib"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Segment is the demux result for one inbound frame: the handle of the
// connection it belongs to plus the leased payload chunk, if any. The
// consumer must call ReturnChunk once the payload has been handed off.
type Segment struct {
	Handle   ConnHandle
	Matched  bool // frame resolved to a tracked connection
	Admitted bool // frame created a new tracked connection
	Syn      bool
	Fin      bool
	Rst      bool
	chunk    *rp.Element
}

// Payload returns the leased payload bytes, nil for payload-free segments.
func (s *Segment) Payload() []byte {
	if s.chunk == nil {
		return nil
	}
	return s.chunk.Data.(*Payload).GetSlice()
}

// ReturnChunk gives the payload chunk back to the pool.
func (s *Segment) ReturnChunk(pool *rp.RingPool) {
	if s.chunk != nil {
		pool.ReturnElement(s.chunk)
		s.chunk = nil
	}
}

// Demuxer resolves inbound frames to tracked connections for one pipeline
// core: dissect Ethernet/IPv4/TCP, look the source socket up in the index,
// admit new connections on SYN. It owns no locking; exactly one goroutine
// drives it.
type Demuxer struct {
	store   *RecordStore
	index   *Sock2Index
	pool    *rp.RingPool
	counter *TcpCounter

	parser  *gopacket.DecodingLayerParser
	eth     layers.Ethernet
	ip4     layers.IPv4
	tcp     layers.TCP
	decoded []gopacket.LayerType
}

func NewDemuxer(store *RecordStore, index *Sock2Index, pool *rp.RingPool, counter *TcpCounter) *Demuxer {
	d := &Demuxer{
		store:   store,
		index:   index,
		pool:    pool,
		counter: counter,
		decoded: make([]gopacket.LayerType, 0, 4),
	}
	d.parser = gopacket.NewDecodingLayerParser(layers.LayerTypeEthernet, &d.eth, &d.ip4, &d.tcp)
	d.parser.IgnoreUnsupported = true
	return d
}

// DemuxFrame dissects one inbound frame and resolves it to a connection.
// A SYN from an unknown socket admits a new server-side connection; any
// other unknown frame, and anything that is not IPv4 TCP, is counted as
// unexpected and left unmatched. Payload-bearing segments of tracked
// connections lease a chunk and bump the receive counter.
func (d *Demuxer) DemuxFrame(frame []byte) Segment {
	d.decoded = d.decoded[:0]
	if err := d.parser.DecodeLayers(frame, &d.decoded); err != nil {
		d.counter.Inc(Unexpected)
		return Segment{}
	}
	var sawIP, sawTCP bool
	for _, lt := range d.decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			sawIP = true
		case layers.LayerTypeTCP:
			sawTCP = true
		}
	}
	if !sawIP || !sawTCP {
		d.counter.Inc(Unexpected)
		return Segment{}
	}

	srcIP := d.ip4.SrcIP.To4()
	if srcIP == nil || d.tcp.SrcPort == 0 {
		d.counter.Inc(Unexpected)
		return Segment{}
	}
	sock := SockAddr{
		IP:   uint32(srcIP[0])<<24 | uint32(srcIP[1])<<16 | uint32(srcIP[2])<<8 | uint32(srcIP[3]),
		Port: uint16(d.tcp.SrcPort),
	}

	seg := Segment{
		Syn: d.tcp.SYN,
		Fin: d.tcp.FIN,
		Rst: d.tcp.RST,
	}

	slot, known := d.index.Get(sock)
	if !known {
		if !d.tcp.SYN || d.tcp.ACK {
			// nothing tracked and not an opening SYN
			d.counter.Inc(Unexpected)
			return seg
		}
		slot = d.store.GetNextSlot()
		rec := d.store.Get(slot)
		rec.Init(TcpRoleServer, uint16(d.tcp.DstPort), sock)
		rec.PushState(TcpSynReceived)
		d.index.Insert(sock, slot)
		d.counter.Inc(RecvSyn)
		seg.Handle = NewConnHandle(d.store, slot)
		seg.Matched = true
		seg.Admitted = true
		return seg
	}

	seg.Handle = NewConnHandle(d.store, slot)
	seg.Matched = true

	switch {
	case d.tcp.RST:
		d.counter.Inc(RecvRst)
	case d.tcp.FIN:
		d.counter.Inc(RecvFin)
	case d.tcp.SYN:
		d.counter.Inc(RecvSyn)
	}

	if len(d.tcp.Payload) > 0 {
		chunk := d.pool.GetElement()
		if chunk != nil {
			if err := chunk.Data.(*Payload).Copy(d.tcp.Payload); err != nil {
				d.pool.ReturnElement(chunk)
			} else {
				seg.chunk = chunk
			}
		}
		seg.Handle.IncrementRecvPayload()
		d.counter.Inc(RecvPayload)
	}
	return seg
}
