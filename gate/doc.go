// Package gate defines the value types shared by the gate analysis and the
// real-time gate host: [Settings] written by the UI or automation,
// [Suggestion] produced by the analysis, and the instrument [Profile] that
// steers both.
//
// All types are plain comparable values. Two Settings are equal with ==
// exactly when they configure the gate processor identically, which lets
// the render path detect no-op updates without allocating.
package gate
