// If you are AI: This file defines the canonical dual-stack endpoint value type.

package socket

import (
	"net/netip"
)

// Address is an IPv6-canonicalized (host, port) pair. Equality is byte-exact
// over the canonical form: v4-mapped addresses are normalized so a peer seen
// as ::ffff:10.0.0.1 and 10.0.0.1 compare equal.
type Address struct {
	ip   netip.Addr
	port uint16
}

// NewAddress canonicalizes ip into its v4-mapped IPv6 form when ip is v4.
func NewAddress(ip netip.Addr, port uint16) Address {
	if ip.Is4() {
		ip = netip.AddrFrom16(ip.As16())
	}
	return Address{ip: ip, port: port}
}

// AddressFromAddrPort builds an Address from a standard library AddrPort.
func AddressFromAddrPort(ap netip.AddrPort) Address {
	return NewAddress(ap.Addr(), ap.Port())
}

// Wildcard returns the IPv6 wildcard address (::) with the given port.
func Wildcard(port uint16) Address {
	return Address{ip: netip.IPv6Unspecified(), port: port}
}

// Loopback returns the IPv6 loopback address (::1) with the given port.
func Loopback(port uint16) Address {
	return Address{ip: netip.IPv6Loopback(), port: port}
}

// IsZeroPort reports whether this address is a "computable" placeholder:
// port 0 means "ask the OS via getsockname on next observation."
func (a Address) IsZeroPort() bool { return a.port == 0 }

func (a Address) IP() netip.Addr { return a.ip }
func (a Address) Port() uint16   { return a.port }

func (a Address) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(a.ip, a.port)
}

func (a Address) String() string {
	return a.AddrPort().String()
}

func (a Address) Equal(other Address) bool {
	return a.ip == other.ip && a.port == other.port
}

func (a Address) IsValid() bool { return a.ip.IsValid() }
