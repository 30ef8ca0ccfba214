// Package internal defines metadata shared by all p9auth executables.
package internal

// Version is the software version of the current build.
const Version = "0.1.0"
