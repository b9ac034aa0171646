package ddns

import (
	"context"
	"fmt"
	"net/netip"
)

// FromString constructs a resolver that always returns addr, which must be an IPv4 address.
// It's useful when the address is known up front, e.g. passed in by a router hook.
func FromString(addr string) (Resolver, error) {
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse IP: %w", ErrParse, err)
	}
	if !a.Is4() {
		return nil, fmt.Errorf("%w: %s is not an IPv4 address", ErrParse, addr)
	}
	return stringResolver(a.String()), nil
}

type stringResolver string

func (s stringResolver) Resolve(context.Context) (string, error) {
	return string(s), nil
}
