// Package pipeline drives a content record through the ordered production
// stages pending → script → image → voice → video → publish → done, with
// "failed" reachable from any stage and absorbing.
//
// Each stage may have a Handler bound to it. A bound handler performs
// externally-costed work (an AI call, an upload) and declares the next stage;
// its cost is accumulated on the record only when it succeeds. Stages without
// a handler are pass-through placeholders that advance one step for free.
// Transitions are not idempotent and are never retried automatically: moving
// a record off "failed" requires external intervention, because a retry would
// silently spend money.
package pipeline
