package statuscolor

import "strings"

// DefaultColor is used for any status without a mapping.
const DefaultColor = "#9e9e9e"

var issueColors = map[string]string{
	"reported":    "#2196f3",
	"in_progress": "#ff9800",
	"testing":     "#9c27b0",
	"resolved":    "#4caf50",
	"closed":      "#607d8b",
	"submitted":   "#2196f3",
	"failed":      "#f44336",
}

var applicationColors = map[string]string{
	"draft":             "#9e9e9e",
	"submitted":         "#2196f3",
	"under_review":      "#ff9800",
	"pending_payment":   "#ffc107",
	"approved":          "#4caf50",
	"rejected":          "#f44336",
	"license_generated": "#009688",
	"collected":         "#607d8b",
}

// ForIssue maps an issue status to its display hex color.
func ForIssue(status string) string {
	return lookup(issueColors, status)
}

// ForApplication maps a license application status to its display color.
func ForApplication(status string) string {
	return lookup(applicationColors, status)
}

func lookup(table map[string]string, status string) string {
	if color, ok := table[strings.ToLower(strings.TrimSpace(status))]; ok {
		return color
	}
	return DefaultColor
}
