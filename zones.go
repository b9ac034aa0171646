package ddns

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
)

// ListZones returns every zone visible to p.
func ListZones(ctx context.Context, p Provider, log logr.Logger) ([]Zone, error) {
	zones, err := p.ListZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing zones: %w", ErrNetwork, err)
	}
	log.Info("listed hosted zones", "count", len(zones))
	for _, z := range zones {
		log.V(1).Info("hosted zone", "id", z.ID, "name", z.Name)
	}
	return zones, nil
}

// FindZone returns the first zone, in listing order, whose name contains domain.
//
// This is a substring match, not a longest-suffix match:
// with "sub.example.com." listed before "example.com.",
// a lookup for "example.com" selects "sub.example.com.".
func FindZone(zones []Zone, domain string) (Zone, error) {
	for _, z := range zones {
		if strings.Contains(z.Name, domain) {
			return z, nil
		}
	}
	return Zone{}, fmt.Errorf("%w: no zone name contains %q", ErrZoneNotFound, domain)
}

// ZoneID extracts the bare identifier from a namespaced one,
// e.g. "Z123" from "/hostedzone/Z123".
func ZoneID(rawID string) (string, error) {
	parts := strings.Split(rawID, "/")
	if len(parts) < 3 || parts[2] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedIdentifier, rawID)
	}
	return parts[2], nil
}

// ResolveZone selects the zone for domain with FindZone and extracts its bare ID.
func ResolveZone(zones []Zone, domain string) (Zone, string, error) {
	z, err := FindZone(zones, domain)
	if err != nil {
		return Zone{}, "", err
	}
	id, err := ZoneID(z.ID)
	if err != nil {
		return Zone{}, "", err
	}
	return z, id, nil
}
