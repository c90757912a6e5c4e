package domain

import (
	"reflect"
)

// SessionDiff represents the changes between two sessions.
// It is serialized to JSON for partial updates on the client.
type SessionDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	StepID *StepID `json:"step_id,omitempty"`
	Phase  *Phase  `json:"phase,omitempty"`

	// Record contains only changed fields. Cleared fields carry an empty value.
	Record map[Field]any `json:"record,omitempty"`

	// Transcript contains turns appended since the old session.
	Transcript *TranscriptDelta `json:"transcript,omitempty"`

	Selected   []string `json:"selected,omitempty"`
	HandoffURL *string  `json:"handoff_url,omitempty"`
}

// TranscriptDelta represents changes to the transcript.
// Reset is set when the transcript was replaced by restart or review.
type TranscriptDelta struct {
	Reset    bool   `json:"reset,omitempty"`
	Appended []Turn `json:"appended"`
}

// Diff calculates the difference between oldSession and newSession.
// If oldSession is nil, it returns a diff representing the entire newSession.
func Diff(oldSession, newSession *Session) *SessionDiff {
	if newSession == nil {
		return nil
	}

	diff := &SessionDiff{
		SessionID: newSession.ID,
	}

	if oldSession == nil || oldSession.CurrentStepID != newSession.CurrentStepID {
		diff.StepID = &newSession.CurrentStepID
	}
	if oldSession == nil || oldSession.Phase != newSession.Phase {
		diff.Phase = &newSession.Phase
	}
	if oldSession == nil || oldSession.HandoffURL != newSession.HandoffURL {
		if oldSession != nil || newSession.HandoffURL != "" {
			diff.HandoffURL = &newSession.HandoffURL
		}
	}
	if oldSession == nil || !reflect.DeepEqual(oldSession.Scratch, newSession.Scratch) {
		if len(newSession.Scratch) > 0 {
			diff.Selected = newSession.Scratch
		}
	}

	diff.Record = diffRecord(oldSession, newSession)
	diff.Transcript = diffTranscript(oldSession, newSession)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

var recordFields = []Field{
	FieldName, FieldProjectType, FieldDesignStatus, FieldFunctionalities,
	FieldDetails, FieldBudgetRange, FieldTimeline, FieldReferenceLinks,
	FieldTargetAudience, FieldHasDomain, FieldHasHosting,
}

func fieldValue(d Draft, f Field) any {
	if f == FieldFunctionalities {
		return d.Functionalities
	}
	return d.Get(f)
}

func diffRecord(old *Session, new *Session) map[Field]any {
	delta := make(map[Field]any)
	for _, f := range recordFields {
		newVal := fieldValue(new.Draft, f)
		if old == nil {
			if !isZero(newVal) {
				delta[f] = newVal
			}
			continue
		}
		if !reflect.DeepEqual(fieldValue(old.Draft, f), newVal) {
			delta[f] = newVal
		}
	}
	if len(delta) == 0 {
		return nil
	}
	return delta
}

func isZero(v any) bool {
	switch x := v.(type) {
	case string:
		return x == ""
	case []string:
		return len(x) == 0
	}
	return v == nil
}

// diffTranscript relies on the transcript being append-only between resets.
func diffTranscript(old *Session, new *Session) *TranscriptDelta {
	if old == nil {
		if len(new.Transcript) == 0 {
			return nil
		}
		return &TranscriptDelta{Appended: new.Transcript}
	}

	oldLen := len(old.Transcript)
	newLen := len(new.Transcript)
	if newLen < oldLen || old.Epoch != new.Epoch || (oldLen > 0 && !reflect.DeepEqual(old.Transcript[0], new.Transcript[0])) {
		return &TranscriptDelta{Reset: true, Appended: new.Transcript}
	}
	if newLen > oldLen {
		return &TranscriptDelta{Appended: new.Transcript[oldLen:]}
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes. A nil diff is empty.
func (d *SessionDiff) IsEmpty() bool {
	return d == nil || d.StepID == nil &&
		d.Phase == nil &&
		d.HandoffURL == nil &&
		len(d.Record) == 0 &&
		len(d.Selected) == 0 &&
		d.Transcript == nil
}
