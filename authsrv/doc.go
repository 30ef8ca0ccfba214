/*
Package authsrv implements the trusted ticket service of the p9auth
handshake: a daemon that holds every principal's secret key and answers
ticket requests with freshly keyed ticket pairs, and the network client
the protocol engine uses to reach it.

The wire exchange is a single round trip. The client sends a marshalled
ticket request; the daemon replies with a one-byte status followed
either by the client's and the server's sealed tickets, or by a
fixed-size error message.
*/
package authsrv
