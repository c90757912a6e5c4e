/*
Package session implements session management and persistence orchestration.

It serialises read-modify-write cycles on a session, first with a
reference-counted local mutex and then, when configured, with a distributed
lock shared by every replica in front of the same store.
*/
package session
