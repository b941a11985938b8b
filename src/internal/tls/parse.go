// FILE: hookwisp/src/internal/tls/parse.go
package tls

import (
	"crypto/tls"
	"fmt"
	"strings"
)

// Only versions a webhook provider is expected to accept
var versionsByName = map[string]uint16{
	"TLS1.2": tls.VersionTLS12,
	"TLS1.3": tls.VersionTLS13,
}

// parseVersion maps "TLS1.2"/"tls13" style names, empty selects fallback
func parseVersion(name string, fallback uint16) (uint16, error) {
	if name == "" {
		return fallback, nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if !strings.Contains(normalized, ".") && len(normalized) == 5 {
		normalized = normalized[:4] + "." + normalized[4:]
	}
	v, ok := versionsByName[normalized]
	if !ok {
		return 0, fmt.Errorf("unsupported TLS version %q (use TLS1.2 or TLS1.3)", name)
	}
	return v, nil
}

// parseCipherSuites resolves a comma-separated list against the suites
// crypto/tls reports as secure. TLS 1.3 suites are not configurable.
func parseCipherSuites(list string) ([]uint16, error) {
	secure := make(map[string]uint16)
	for _, s := range tls.CipherSuites() {
		secure[s.Name] = s.ID
	}

	var ids []uint16
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		id, ok := secure[name]
		if !ok {
			return nil, fmt.Errorf("unknown or insecure cipher suite %q", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
