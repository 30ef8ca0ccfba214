/*
Package application provides the shared executable layer of the p9auth
tools: configuration loading and saving, structured logging, and a
generic connection-serving base for the ticket service daemon.

Each executable defines its own config type embedding CommonConfig and
gets encoding-agnostic persistence through the ConfigLoader
abstraction. Logging is configured per executable through the config
file and backed by a single Logger wrapper.
*/
package application
