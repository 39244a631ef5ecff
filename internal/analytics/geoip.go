package analytics

import (
	"fmt"
	"log"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// Location holds the geographic fields derived from an IP address.
// Nil fields mean the lookup was skipped or produced nothing.
type Location struct {
	Country *string
	City    *string
	Region  *string
}

// GeoResolver looks up a location for an IP address. Lookups are
// best-effort: failures yield an empty Location, never an error to the
// visit path.
type GeoResolver interface {
	Lookup(ip string) Location
}

// maxmindResolver resolves locations from an offline MaxMind database.
type maxmindResolver struct {
	reader *geoip2.Reader
}

// NewMaxMindResolver opens a GeoLite2/GeoIP2 City database file.
func NewMaxMindResolver(dbPath string) (GeoResolver, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &maxmindResolver{reader: reader}, nil
}

// Lookup resolves an IP to country/city/region. Private and loopback
// addresses are excluded before touching the database.
func (m *maxmindResolver) Lookup(ip string) Location {
	parsed := parsePublicIP(ip)
	if parsed == nil {
		return Location{}
	}

	record, err := m.reader.City(parsed)
	if err != nil {
		// GeoIP is optional enrichment, drop silently
		log.Printf("Warning: GeoIP lookup failed for %s: %v", ip, err)
		return Location{}
	}

	var loc Location
	if code := record.Country.IsoCode; code != "" {
		loc.Country = &code
	}
	if city := record.City.Names["en"]; city != "" {
		loc.City = &city
	}
	if len(record.Subdivisions) > 0 {
		if region := record.Subdivisions[0].IsoCode; region != "" {
			loc.Region = &region
		}
	}
	return loc
}

// NoopGeoResolver always returns an empty Location. Used when no GeoIP
// database is configured.
type NoopGeoResolver struct{}

func (NoopGeoResolver) Lookup(string) Location {
	return Location{}
}

// parsePublicIP returns the parsed IP when it is a routable public
// address, nil otherwise. Ports are stripped first ("1.2.3.4:5678").
func parsePublicIP(ip string) net.IP {
	if ip == "" {
		return nil
	}

	clean := strings.TrimSpace(ip)
	if host, _, err := net.SplitHostPort(clean); err == nil {
		clean = host
	}

	parsed := net.ParseIP(clean)
	if parsed == nil {
		return nil
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast() {
		return nil
	}
	return parsed
}

// ExtractLanguage returns the primary language subtag of the first
// Accept-Language entry: "en-US,en;q=0.9" -> "en".
func ExtractLanguage(acceptLanguage string) *string {
	if acceptLanguage == "" {
		return nil
	}

	first := strings.Split(acceptLanguage, ",")[0]
	first = strings.Split(first, ";")[0]
	lang := strings.ToLower(strings.TrimSpace(strings.Split(first, "-")[0]))
	if lang == "" {
		return nil
	}
	return &lang
}
