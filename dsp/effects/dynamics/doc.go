// Package dynamics provides the drum gate processor driven by the
// real-time host.
//
// [Gate] is a mono soft-knee gate with hold, working in seconds and with an
// optional floor. [GateBank] links one Gate detector across the channels of
// a block and applies the shared gain with vector multiplies.
//
// Building with the fastmath tag swaps the per-sample log2 and exp2 for
// fast approximations.
package dynamics
