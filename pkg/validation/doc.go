// Package validation holds the pure validators used by text-input steps and
// the input sanitizer applied to every free-text answer.
package validation
