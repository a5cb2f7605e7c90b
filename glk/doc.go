// Package glk implements the legacy Glk console-I/O API as a server-side
// emulation layer.
//
// This package contains:
//   - The session context owning all object registries and protocol state
//   - Window, stream and fileref subsystems with legacy Glk semantics
//   - The select event state machine and its single blocking suspension point
//   - The dispatch and retained-object registry bridge for foreign VMs
//   - Gestalt, style, graphics, unicode and datetime entry points
//
// Every interaction is translated into the line-delimited JSON dialect in
// the protocol package and consumed by an external display client. The
// calling VM sees a synchronous console API; failure is reported through
// sentinel values, never errors, matching the historical contract.
package glk
