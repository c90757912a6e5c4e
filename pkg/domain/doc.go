/*
Package domain contains the core models of the briefing wizard.

It defines the entities every other package exchanges: steps and their
options, the answer record, the conversation session and the view handed to
presentation layers. This package is kept pure and free of external
dependencies like I/O or persistence.

# Key Entities

  - Step: One node of the flow table (text input, choice, info card, summary).
  - Draft: The in-progress answer record. Brief is its completed form.
  - Session: The serialisable snapshot of one conversation (current step, phase, transcript, pending delay).
  - View: A read-only projection of a Session that a UI can draw without the flow table.
*/
package domain
