package fhir

// OperationOutcome severity levels per FHIR R4.
const (
	IssueSeverityFatal       = "fatal"
	IssueSeverityError       = "error"
	IssueSeverityWarning     = "warning"
	IssueSeverityInformation = "information"
)

// OperationOutcome issue type codes per FHIR R4.
const (
	IssueTypeInvalid     = "invalid"
	IssueTypeStructure   = "structure"
	IssueTypeRequired    = "required"
	IssueTypeValue       = "value"
	IssueTypeNotFound    = "not-found"
	IssueTypeProcessing  = "processing"
	IssueTypeThrottled   = "throttled"
	IssueTypeTooCostly   = "too-costly"
	IssueTypeTimeout     = "timeout"
	IssueTypeException   = "exception"
	IssueTypeCodeInvalid = "code-invalid"
	IssueTypeForbidden   = "forbidden"
)

// FieldOutcome reports a single rejected field. code is one of the issue type
// codes above and field is recorded as the issue expression.
func FieldOutcome(code, field, diagnostics string) *OperationOutcome {
	issue := OperationOutcomeIssue{
		Severity:    IssueSeverityError,
		Code:        code,
		Diagnostics: diagnostics,
	}
	if field != "" {
		issue.Expression = []string{field}
	}
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue:        []OperationOutcomeIssue{issue},
	}
}

// InternalErrorOutcome creates an OperationOutcome for internal server errors.
func InternalErrorOutcome(diagnostics string) *OperationOutcome {
	return NewOperationOutcome(IssueSeverityFatal, IssueTypeException, diagnostics)
}

// HasErrors returns true if the outcome contains any error or fatal issues.
func (o *OperationOutcome) HasErrors() bool {
	for _, issue := range o.Issue {
		if issue.Severity == IssueSeverityError || issue.Severity == IssueSeverityFatal {
			return true
		}
	}
	return false
}
