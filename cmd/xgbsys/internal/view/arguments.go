package view

import "fmt"

// ViewType represents which view layer to use.
type ViewType rune

const (
	ViewNone  ViewType = 0
	ViewHuman ViewType = 'H'
	ViewJSON  ViewType = 'J'
	ViewYAML  ViewType = 'Y'
)

// String returns the string representation of the ViewType.
func (vt ViewType) String() string {
	switch vt {
	case ViewNone:
		return "none"
	case ViewHuman:
		return "human"
	case ViewJSON:
		return "json"
	case ViewYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseOutputFormat maps the -o flag to a view type. Empty and "text" select
// the human view.
func ParseOutputFormat(format string) (ViewType, error) {
	switch format {
	case "", "text":
		return ViewHuman, nil
	case "json":
		return ViewJSON, nil
	case "yaml":
		return ViewYAML, nil
	default:
		return ViewNone, fmt.Errorf("unknown output format %q: want text, json or yaml", format)
	}
}
