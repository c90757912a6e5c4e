/*
Package flow holds the conversation graph.

A Table is built from plain domain.Step values and validated eagerly: a
missing successor, an unreachable step or a cycle is a configuration error
reported before any conversation starts. The two pure resolvers,
ResolveMessage and ResolveOptions, evaluate a step against the answer record.
*/
package flow
