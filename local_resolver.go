package ddns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// InterfaceResolver constructs a resolver that returns the first global unicast IPv4 address on the named interface.
// Only useful when the host holds its public address directly, e.g. a router or a VPS without NAT.
func InterfaceResolver(iface string) Resolver {
	return interfaceResolver{iface: iface, addrs: interfaceAddrs}
}

type interfaceResolver struct {
	iface string
	addrs func(string) ([]net.Addr, error)
}

func interfaceAddrs(name string) ([]net.Addr, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("error getting interface %s by name: %w", name, err)
	}
	return iface.Addrs()
}

func (r interfaceResolver) Resolve(ctx context.Context) (string, error) {
	adds, err := r.addrs(r.iface)
	if err != nil {
		return "", fmt.Errorf("%w: error looking up addresses for interface %s: %w", ErrNetwork, r.iface, err)
	}
	// addr: ip+net:192.168.86.253/24
	// addr: ip+net:fd64:9f44:fc30:0:b951:8b16:2812:a227/64
	// addr: ip+net:fe80::2cc9:801b:3551:9a43/64
	var parseErrors []error
	for _, addr := range adds {
		ip, err := netip.ParsePrefix(addr.String())
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("error parsing local ip %s: %s", addr.String(), err))
			continue
		}
		a := ip.Addr()
		if !a.Is4() || !a.IsGlobalUnicast() || a.IsPrivate() {
			continue
		}
		return a.String(), nil
	}
	parseErrors = append(parseErrors, fmt.Errorf("no public IPv4 address on interface %s", r.iface))
	return "", fmt.Errorf("%w: %w", ErrParse, errors.Join(parseErrors...))
}
