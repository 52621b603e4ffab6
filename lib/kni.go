package lib

import (
	"fmt"
	"net"
	"os/exec"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// SetupKni provisions the kernel network interface the engine exposes for
// slow-path traffic: assign the MAC, move the interface into its own
// namespace, add one address per engine IP and bring it up. Each step
// shells out to ip(8), the same way the engine provisions firewall rules.
func SetupKni(kniName string, ipNet *net.IPNet, macAddress, kniNetns string, ipAddressCount int) error {
	prefixLen, _ := ipNet.Mask.Size()
	first := ipNet.IP.To4()
	if first == nil {
		return fmt.Errorf("SetupKni: %s is not an IPv4 network", ipNet)
	}

	if err := runIP("assign MAC address",
		"link", "set", "dev", kniName, "address", macAddress); err != nil {
		return err
	}
	if err := runIP("create namespace",
		"netns", "add", kniNetns); err != nil {
		return err
	}
	if err := runIP("move interface to namespace",
		"link", "set", "dev", kniName, "netns", kniNetns); err != nil {
		return err
	}

	base := uint32(first[0])<<24 | uint32(first[1])<<16 | uint32(first[2])<<8 | uint32(first[3])
	for i := 0; i < ipAddressCount; i++ {
		addr := base + uint32(i)
		cidr := fmt.Sprintf("%d.%d.%d.%d/%d",
			byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr), prefixLen)
		if err := runIP("assign IP address",
			"netns", "exec", kniNetns, "ip", "addr", "add", cidr, "dev", kniName); err != nil {
			return err
		}
	}

	if err := runIP("set interface up",
		"netns", "exec", kniNetns, "ip", "link", "set", "dev", kniName, "up"); err != nil {
		return err
	}

	out, err := exec.Command("ip",
		"netns", "exec", kniNetns, "ip", "addr", "show", "dev", kniName).Output()
	if err != nil {
		return fmt.Errorf("SetupKni: show addresses of %s: %w", kniName, err)
	}
	log.Infof("kni %s addresses:\n%s", kniName, string(out))
	return nil
}

func runIP(what string, args ...string) error {
	out, err := exec.Command("ip", args...).CombinedOutput()
	log.Debugf("ip %s (%s): %s", strconv.Quote(fmt.Sprint(args)), what, string(out))
	if err != nil {
		return fmt.Errorf("SetupKni: %s failed: %w (%s)", what, err, string(out))
	}
	return nil
}
