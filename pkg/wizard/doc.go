// Package wizard defines the briefing conversation: the step graph, the
// service package catalog that drives the feature checklist, and the
// methodology shown to the visitor before the detailed questions.
package wizard
