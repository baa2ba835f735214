package types

import (
	"fmt"
	"go/token"
	"strings"
)

// Severity is the reporting level attached to an issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// MarshalYAML writes the lowercase name used in .boxlint.yaml.
func (s Severity) MarshalYAML() (any, error) {
	return strings.ToLower(s.String()), nil
}

// UnmarshalYAML accepts the lowercase names used in .boxlint.yaml.
func (s *Severity) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "error":
		*s = SeverityError
	case "warning", "warn":
		*s = SeverityWarning
	case "info":
		*s = SeverityInfo
	case "off":
		*s = SeverityOff
	default:
		return fmt.Errorf("unknown severity %q", raw)
	}
	return nil
}

// ConfigRule holds the per-rule knobs read from the configuration file.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}

// Options holds engine-wide settings that individual rules consume.
type Options struct {
	// AvoidBreakingExportedAPI suppresses findings on exported callables,
	// since acting on them would break the package's public surface.
	AvoidBreakingExportedAPI bool
}

// Issue represents a lint issue found in the code base.
//
// Confidence expresses how safe the Suggestion is to apply mechanically,
// from 0.0 (a human must do the rewrite) to 1.0 (textual replacement is
// sufficient). The fixer only ever applies issues above its threshold.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Severity   Severity
	Confidence float64
}
