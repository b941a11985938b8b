// FILE: hookwisp/src/internal/core/severity.go
package core

import (
	"strings"
)

// Severity is the ordered importance of a log event
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityTrace
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
	SeverityFatal
)

// String returns the upper-case level name used in notification titles
func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "TRACE"
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a level name to a Severity, SeverityUnknown if unrecognized
func ParseSeverity(name string) Severity {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "TRACE", "TRC":
		return SeverityTrace
	case "DEBUG", "DBG":
		return SeverityDebug
	case "INFO", "INF", "INFORMATION":
		return SeverityInfo
	case "WARN", "WARNING", "WRN":
		return SeverityWarn
	case "ERROR", "ERR":
		return SeverityError
	case "FATAL", "CRITICAL", "CRIT", "PANIC":
		return SeverityFatal
	default:
		return SeverityUnknown
	}
}

// ExtractSeverity detects a level marker inside a plain-text log line.
// Fatal markers are checked before error so "[FATAL]" is not downgraded.
func ExtractSeverity(line string) Severity {
	patterns := []struct {
		patterns []string
		severity Severity
	}{
		{[]string{"[FATAL]", "FATAL:", " FATAL ", "[CRIT]", "CRITICAL:"}, SeverityFatal},
		{[]string{"[ERROR]", "ERROR:", " ERROR ", "ERR:", "[ERR]"}, SeverityError},
		{[]string{"[WARN]", "WARN:", " WARN ", "WARNING:", "[WARNING]"}, SeverityWarn},
		{[]string{"[INFO]", "INFO:", " INFO ", "[INF]", "INF:"}, SeverityInfo},
		{[]string{"[DEBUG]", "DEBUG:", " DEBUG ", "[DBG]", "DBG:"}, SeverityDebug},
		{[]string{"[TRACE]", "TRACE:", " TRACE "}, SeverityTrace},
	}

	// Pad so bare keywords match at either end of the line
	upperLine := " " + strings.ToUpper(line) + " "
	for _, group := range patterns {
		for _, pattern := range group.patterns {
			if strings.Contains(upperLine, pattern) {
				return group.severity
			}
		}
	}

	return SeverityUnknown
}
