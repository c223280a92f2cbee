// Package host wraps the drum gate processor for a real-time audio host.
//
// A [Host] owns a parameter table that UIs, automation and the render
// callback share without locks, a render state with the settings last
// applied to the processor, and the negotiated [Format]. The host pulls
// one upstream block per [Host.Render] call, reads the current parameter
// values, reconfigures the processor only when they changed, and gates the
// block in place unless bypassed.
//
// [Initialize] registers the gate component in the process-wide
// [Registry] exactly once; [New] refuses to build a host before that.
package host
