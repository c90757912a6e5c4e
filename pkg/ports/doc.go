/*
Package ports defines the driven and driving ports of the briefing service.

These interfaces decouple the conversation engine from storage backends and
let the HTTP, MCP and terminal adapters share one conversation surface.

# Key Interfaces

  - StateStore: persists and loads sessions (memory, Redis).
  - DistributedLocker: serialises concurrent updates to a session.
  - Conversation: the operations a front end drives a briefing with.
*/
package ports
