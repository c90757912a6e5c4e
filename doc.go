/*
Package briefing is a conversational budgeting wizard. It walks a visitor
through a scripted chat (name, audience, design, features, timeline,
domain, hosting, budget and notes), validates each answer, and hands the
finished briefing off as a pre-filled WhatsApp message.

# Architecture

The conversation graph is an immutable flow table built with the pkg/dsl
builder (see pkg/wizard). A stateless engine applies visitor actions and
timed transitions to a serialisable session. The runner owns the clock:
it keeps sessions in a store, arms timers for "bot is typing" and info
card pauses, and publishes views to subscribers. Front ends (HTTP with
server-sent events, MCP tools and the terminal chat) only talk to the
runner through ports.Conversation.

# Usage

	cfg, err := config.Load("briefing.yaml")
	if err != nil {
		log.Fatal(err)
	}
	svc, err := briefing.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	handler, err := svc.Handler()
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(http.ListenAndServe(cfg.HTTP.Addr, handler))

Sessions live in memory by default. With the redis driver they survive
restarts and can be served by several replicas; a distributed lock
serialises concurrent actions on one session. Setting an encryption key
seals every stored session with AES-GCM.
*/
package briefing
