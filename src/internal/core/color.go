// FILE: hookwisp/src/internal/core/color.go
package core

// ColorCode is a "#rrggbb" attachment color
type ColorCode string

// Attachment colors, lower-case hex as chat services echo them back
const (
	ColorRed    ColorCode = "#ff0000"
	ColorOrange ColorCode = "#ffc800"
	ColorBlack  ColorCode = "#000000"
	ColorBlue   ColorCode = "#0000ff"
	ColorGreen  ColorCode = "#00ff00"
	ColorGray   ColorCode = "#808080"
)

// SeverityColor maps every severity to an attachment color; it never fails
func SeverityColor(s Severity) ColorCode {
	switch s {
	case SeverityFatal, SeverityError:
		return ColorRed
	case SeverityWarn:
		return ColorOrange
	case SeverityInfo:
		return ColorBlack
	case SeverityDebug:
		return ColorBlue
	case SeverityTrace:
		return ColorGreen
	default:
		return ColorGray
	}
}
