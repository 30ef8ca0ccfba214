/*
Package protocol implements the client- and server-side engine of the
p9sk shared-key mutual authentication handshake.

Two principals, a connection initiator (client) and a responder
(server), exchange a fixed sequence of fixed-size messages to prove to
each other that they hold secrets bound to their claimed identities,
mediated by a trusted ticket-issuing service, and to derive a short
shared secret for keying subsequent traffic.

Session

This module owns the per-session state machine. A Session is created
for one connection, advances through a strict per-role phase sequence
via its Read and Write operations, and is destroyed by Close, which
releases the session's key record and derived secret. Sessions are not
safe for concurrent use; a multi-session server creates one Session
per connection.

Variants

Two variants of the protocol exist. P9SK1 is the full protocol: the
client generates its own random channel challenge and sends it first.
P9SK2 is a flawed simplification kept for compatibility: the client
never generates a challenge and instead adopts the one embedded in the
server's ticket request, so the handshake is bound only to a value the
responder chose. New deployments should use P9SK1.

Error

This module defines the error codes the engine returns to its caller.
No error is retried internally; the caller decides whether to abandon
or restart the whole session, since a session is not resumable after
an error.
*/
package protocol
