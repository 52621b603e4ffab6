package lib

import (
	"fmt"
	"sort"
)

// maxLocalIPs bounds the number of distinct local IPv4 addresses a pipeline
// may track sockets for. Each address gets a flat per-port bank, so the
// whole index stays branch-free on lookup at a fixed memory cost.
const maxLocalIPs = 8

type portBank [0xFFFF]uint64

// Sock2Index resolves an observed (IPv4, port) socket to the logical slot
// of its tracked connection. Ports are reused quickly under load
// generation, so each known IP gets a flat 65535-entry bank indexed by
// port-1. Bank entries hold slot+1 internally; 0 marks an empty entry.
//
// Banks are handed out from a free list as IPs appear and are never
// reclaimed: a load generator works against a fixed set of local addresses
// for the process lifetime.
type Sock2Index struct {
	sockTree map[uint32]uint8
	portMaps [maxLocalIPs]*portBank
	freeMaps []uint8
}

func NewSock2Index() *Sock2Index {
	s := &Sock2Index{
		sockTree: make(map[uint32]uint8),
		freeMaps: make([]uint8, 0, maxLocalIPs),
	}
	for i := 0; i < maxLocalIPs; i++ {
		s.portMaps[i] = &portBank{}
		s.freeMaps = append(s.freeMaps, uint8(i))
	}
	return s
}

// Get returns the slot mapped to sock, ok=false on a miss.
func (s *Sock2Index) Get(sock SockAddr) (uint64, bool) {
	if sock.Port == 0 {
		panic("Sock2Index.Get: port must be non-zero")
	}
	bank, ok := s.sockTree[sock.IP]
	if !ok {
		return 0, false
	}
	entry := s.portMaps[bank][sock.Port-1]
	if entry == 0 {
		return 0, false
	}
	return entry - 1, true
}

// Insert maps sock to slot. The first socket of a new IP claims a bank;
// running out of banks means the caller exceeded the supported number of
// local addresses and panics.
func (s *Sock2Index) Insert(sock SockAddr, slot uint64) {
	if sock.Port == 0 {
		panic("Sock2Index.Insert: port must be non-zero")
	}
	bank, ok := s.sockTree[sock.IP]
	if !ok {
		if len(s.freeMaps) == 0 {
			panic(fmt.Sprintf("Sock2Index.Insert: only %d local IP addresses are supported", maxLocalIPs))
		}
		bank = s.freeMaps[0]
		s.freeMaps = s.freeMaps[1:]
		s.sockTree[sock.IP] = bank
	}
	s.portMaps[bank][sock.Port-1] = slot + 1
}

// Remove clears the mapping for sock and returns the previous slot if any.
// The IP keeps its bank.
func (s *Sock2Index) Remove(sock SockAddr) (uint64, bool) {
	if sock.Port == 0 {
		panic("Sock2Index.Remove: port must be non-zero")
	}
	bank, ok := s.sockTree[sock.IP]
	if !ok {
		return 0, false
	}
	old := s.portMaps[bank][sock.Port-1]
	s.portMaps[bank][sock.Port-1] = 0
	if old == 0 {
		return 0, false
	}
	return old - 1, true
}

// Values collects all currently mapped slots in IP-then-port order.
func (s *Sock2Index) Values() []uint64 {
	ips := make([]uint32, 0, len(s.sockTree))
	for ip := range s.sockTree {
		ips = append(ips, ip)
	}
	sort.Slice(ips, func(i, j int) bool { return ips[i] < ips[j] })

	var values []uint64
	for _, ip := range ips {
		bank := s.portMaps[s.sockTree[ip]]
		for _, entry := range bank {
			if entry != 0 {
				values = append(values, entry-1)
			}
		}
	}
	return values
}
