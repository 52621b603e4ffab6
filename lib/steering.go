package lib

import (
	"fmt"
	"net"
)

// FlowSteeringMode selects how inbound flows are steered to pipeline
// cores: by destination port (the default) or by destination IP.
type FlowSteeringMode uint8

const (
	SteeringPort FlowSteeringMode = iota
	SteeringIp
)

func (m FlowSteeringMode) String() string {
	switch m {
	case SteeringPort:
		return "port"
	case SteeringIp:
		return "ip"
	default:
		return fmt.Sprintf("FlowSteeringMode(%d)", uint8(m))
	}
}

// ParseFlowSteeringMode decodes the config value.
func ParseFlowSteeringMode(s string) (FlowSteeringMode, error) {
	switch s {
	case "", "port":
		return SteeringPort, nil
	case "ip":
		return SteeringIp, nil
	default:
		return SteeringPort, fmt.Errorf("unknown flow steering mode %q", s)
	}
}

// SteeringTarget is the (destination IP, port base) a NIC filter steers to
// one core's rx queue.
type SteeringTarget struct {
	DstIP    net.IP
	PortBase uint16
}

// tcpPortBase derives the port base for the count-th core under port
// steering: the port mask minus count times the mask's span.
func tcpPortBase(portMask uint16, count uint16) uint16 {
	return portMask - count*(^portMask+1)
}

// DeriveSteeringTarget computes the filter target for one core. Under IP
// steering each core owns the address first+core+1 with the full port
// mask; under port steering all cores share the first address and split
// the masked port range.
func DeriveSteeringTarget(mode FlowSteeringMode, ipNet *net.IPNet, portMask uint16, core int) (SteeringTarget, error) {
	first := ipNet.IP.To4()
	if first == nil {
		return SteeringTarget{}, fmt.Errorf("DeriveSteeringTarget: %s is not an IPv4 network", ipNet)
	}
	base := uint32(first[0])<<24 | uint32(first[1])<<16 | uint32(first[2])<<8 | uint32(first[3])
	switch mode {
	case SteeringIp:
		addr := base + uint32(core) + 1
		return SteeringTarget{
			DstIP:    net.IPv4(byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr)),
			PortBase: portMask,
		}, nil
	default:
		return SteeringTarget{
			DstIP:    net.IPv4(first[0], first[1], first[2], first[3]),
			PortBase: tcpPortBase(portMask, uint16(core)),
		}, nil
	}
}
