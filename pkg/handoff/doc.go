// Package handoff turns a completed brief into the structured lead message
// and the WhatsApp deep link that carries it.
package handoff
