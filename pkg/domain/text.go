package domain

// Text is a step message: either a fixed string or a pure function of the
// draft record. The zero value is the empty static text.
type Text struct {
	static  string
	compute func(Draft) string
}

// Static wraps a fixed message.
func Static(s string) Text {
	return Text{static: s}
}

// Computed wraps a message derived from the draft (personalisation).
func Computed(fn func(Draft) string) Text {
	return Text{compute: fn}
}

// IsComputed reports whether the text depends on the draft.
func (t Text) IsComputed() bool {
	return t.compute != nil
}

// Resolve returns the message for the given draft. The draft is passed by
// value so the function cannot mutate the caller's record.
func (t Text) Resolve(d Draft) string {
	if t.compute != nil {
		return t.compute(d.Clone())
	}
	return t.static
}

// OptionSet is either a fixed option list or options computed from the draft.
type OptionSet struct {
	fixed   []Option
	compute func(Draft) []Option
}

// Fixed builds a static option list.
func Fixed(opts ...Option) OptionSet {
	return OptionSet{fixed: opts}
}

// Dynamic builds options resolved lazily against the draft.
func Dynamic(fn func(Draft) []Option) OptionSet {
	return OptionSet{compute: fn}
}

// IsDynamic reports whether options depend on the draft.
func (o OptionSet) IsDynamic() bool {
	return o.compute != nil
}

// Empty reports whether the set declares nothing at all.
func (o OptionSet) Empty() bool {
	return o.compute == nil && len(o.fixed) == 0
}

// Resolve returns a fresh copy of the options for the given draft.
func (o OptionSet) Resolve(d Draft) []Option {
	var src []Option
	if o.compute != nil {
		src = o.compute(d.Clone())
	} else {
		src = o.fixed
	}
	if len(src) == 0 {
		return nil
	}
	out := make([]Option, len(src))
	copy(out, src)
	return out
}

// Declared returns the static options only. Dynamic sets declare no edges;
// their steps advance through Step.Next.
func (o OptionSet) Declared() []Option {
	return o.fixed
}
