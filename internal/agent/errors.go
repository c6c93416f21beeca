package agent

import "fmt"

// MissingPlaceholderError is a template used without one of its arguments.
// It signals a bug in the caller, not a runtime condition.
type MissingPlaceholderError struct {
	Template    TemplateName
	Placeholder string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("template %q: missing placeholder {%s}", e.Template, e.Placeholder)
}

type UnknownTemplateError struct {
	Template TemplateName
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template %q", e.Template)
}

// ParseFault is a single model output line that could not become a step.
// Faults are skipped, never returned as errors.
type ParseFault struct {
	Line   string
	Reason string
}

func (f ParseFault) Error() string {
	return fmt.Sprintf("skipped line %q: %s", f.Line, f.Reason)
}

// EvaluationError wraps anything that kept a plan from being scored.
type EvaluationError struct {
	Cause error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed: %v", e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
