package assembler

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Severity grades a diagnostic.
type Severity int

const (
	// Warning marks input that was encoded on a best-effort basis.
	Warning Severity = iota
	// Error marks input that was dropped or rejected. The output is still
	// written, but callers should fail the build.
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is a problem found in the source. Assembly never stops on one.
type Diagnostic struct {
	Line     int
	Severity Severity
	Message  string
}

func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", d.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// report records a diagnostic and logs it.
func (s *session) report(sev Severity, line int, fields logrus.Fields, format string, args ...any) {
	d := Diagnostic{Line: line, Severity: sev, Message: fmt.Sprintf(format, args...)}
	s.diags = append(s.diags, d)

	entry := s.log.WithField("line", line)
	if s.name != "" {
		entry = entry.WithField("file", s.name)
	}
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	if sev == Error {
		entry.Error(d.Message)
	} else {
		entry.Warn(d.Message)
	}
}
