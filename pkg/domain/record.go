package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Field names a slot of the answer record.
type Field string

const (
	FieldNone            Field = ""
	FieldName            Field = "name"
	FieldProjectType     Field = "projectType"
	FieldDesignStatus    Field = "designStatus"
	FieldFunctionalities Field = "functionalities"
	FieldDetails         Field = "details"
	FieldBudgetRange     Field = "budgetRange"
	FieldTimeline        Field = "timeline"
	FieldReferenceLinks  Field = "referenceLinks"
	FieldTargetAudience  Field = "targetAudience"
	FieldHasDomain       Field = "hasDomain"
	FieldHasHosting      Field = "hasHosting"
)

// Answer values used by the infrastructure questions.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// DefaultFunctionality replaces an empty checklist confirmation.
const DefaultFunctionality = "Básico"

// Draft is the in-progress answer record. Every field starts empty and holds
// either the empty default or a value that passed its step's validator.
type Draft struct {
	Name            string   `json:"name"`
	ProjectType     string   `json:"projectType"`
	DesignStatus    string   `json:"designStatus"`
	Functionalities []string `json:"functionalities"`
	Details         string   `json:"details"`
	BudgetRange     string   `json:"budgetRange"`
	Timeline        string   `json:"timeline"`
	ReferenceLinks  string   `json:"referenceLinks"`
	TargetAudience  string   `json:"targetAudience"`
	HasDomain       string   `json:"hasDomain"`
	HasHosting      string   `json:"hasHosting"`
}

// Clone returns a deep copy.
func (d Draft) Clone() Draft {
	d.Functionalities = slices.Clone(d.Functionalities)
	return d
}

func (d *Draft) slot(f Field) *string {
	switch f {
	case FieldName:
		return &d.Name
	case FieldProjectType:
		return &d.ProjectType
	case FieldDesignStatus:
		return &d.DesignStatus
	case FieldDetails:
		return &d.Details
	case FieldBudgetRange:
		return &d.BudgetRange
	case FieldTimeline:
		return &d.Timeline
	case FieldReferenceLinks:
		return &d.ReferenceLinks
	case FieldTargetAudience:
		return &d.TargetAudience
	case FieldHasDomain:
		return &d.HasDomain
	case FieldHasHosting:
		return &d.HasHosting
	}
	return nil
}

// Get returns a scalar field. List fields are joined with ", ".
func (d Draft) Get(f Field) string {
	if f == FieldFunctionalities {
		return strings.Join(d.Functionalities, ", ")
	}
	if p := d.slot(f); p != nil {
		return *p
	}
	return ""
}

// Set writes a scalar field.
func (d *Draft) Set(f Field, value string) error {
	if f == FieldFunctionalities {
		return fmt.Errorf("field %q holds a list", f)
	}
	p := d.slot(f)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	*p = value
	return nil
}

// SetList writes the functionality list.
func (d *Draft) SetList(f Field, values []string) error {
	if f != FieldFunctionalities {
		return fmt.Errorf("field %q is not a list", f)
	}
	d.Functionalities = slices.Clone(values)
	return nil
}

// Brief is the fully populated record. It is only obtainable through
// Draft.Complete, so the handoff formatter never sees a partial record.
type Brief struct {
	Name            string
	ProjectType     string
	DesignStatus    string
	Functionalities []string // empty means the package defaults
	Timeline        string
	BudgetRange     string
	OwnsDomain      bool
	OwnsHosting     bool

	// Optional fields.
	TargetAudience string
	ReferenceLinks []string
	Details        string
}

// IncompleteError lists required fields missing from a draft.
type IncompleteError struct {
	Missing []Field
}

func (e *IncompleteError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("record incomplete, missing: %s", strings.Join(names, ", "))
}

// Complete converts the draft into a Brief.
func (d Draft) Complete() (Brief, error) {
	var missing []Field
	require := func(f Field, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, f)
		}
	}
	require(FieldName, d.Name)
	require(FieldProjectType, d.ProjectType)
	require(FieldDesignStatus, d.DesignStatus)
	require(FieldTimeline, d.Timeline)
	require(FieldBudgetRange, d.BudgetRange)
	require(FieldHasDomain, d.HasDomain)
	require(FieldHasHosting, d.HasHosting)
	if len(missing) > 0 {
		return Brief{}, &IncompleteError{Missing: missing}
	}

	var links []string
	for _, l := range strings.Split(d.ReferenceLinks, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}

	return Brief{
		Name:            d.Name,
		ProjectType:     d.ProjectType,
		DesignStatus:    d.DesignStatus,
		Functionalities: slices.Clone(d.Functionalities),
		Timeline:        d.Timeline,
		BudgetRange:     d.BudgetRange,
		OwnsDomain:      d.HasDomain == AnswerYes,
		OwnsHosting:     d.HasHosting == AnswerYes,
		TargetAudience:  strings.TrimSpace(d.TargetAudience),
		ReferenceLinks:  links,
		Details:         strings.TrimSpace(d.Details),
	}, nil
}
