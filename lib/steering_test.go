package lib

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFlowSteeringMode(t *testing.T) {
	cases := []struct {
		in      string
		want    FlowSteeringMode
		wantErr bool
	}{
		{"", SteeringPort, false},
		{"port", SteeringPort, false},
		{"ip", SteeringIp, false},
		{"Port", SteeringPort, true},
		{"flow", SteeringPort, true},
	}
	for _, c := range cases {
		got, err := ParseFlowSteeringMode(c.in)
		if c.wantErr {
			require.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got, c.in)
	}
}

func TestDeriveSteeringTargetByPort(t *testing.T) {
	_, ipNet, err := net.ParseCIDR("192.168.222.1/24")
	require.NoError(t, err)

	// port mask 0xF000 spans 0x1000 ports per core
	seen := map[uint16]bool{}
	for core := 0; core < 4; core++ {
		target, err := DeriveSteeringTarget(SteeringPort, ipNet, 0xF000, core)
		require.NoError(t, err)
		require.Equal(t, "192.168.222.0", target.DstIP.String(), "all cores share the first address")
		require.EqualValues(t, 0xF000-core*0x1000, target.PortBase)
		require.False(t, seen[target.PortBase], "port bases must not collide")
		seen[target.PortBase] = true
	}
}

func TestDeriveSteeringTargetByIp(t *testing.T) {
	_, ipNet, err := net.ParseCIDR("192.168.222.1/24")
	require.NoError(t, err)

	for core := 0; core < 4; core++ {
		target, err := DeriveSteeringTarget(SteeringIp, ipNet, 0xF000, core)
		require.NoError(t, err)
		require.Equal(t, net.IPv4(192, 168, 222, byte(core+1)).String(), target.DstIP.String())
		require.EqualValues(t, 0xF000, target.PortBase, "full mask, flows split by address")
	}
}

func TestDeriveSteeringTargetRejectsIPv6(t *testing.T) {
	_, ipNet, err := net.ParseCIDR("2001:db8::/64")
	require.NoError(t, err)

	_, err = DeriveSteeringTarget(SteeringPort, ipNet, 0xF000, 0)
	require.Error(t, err)
}
