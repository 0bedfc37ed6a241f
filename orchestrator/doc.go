// Package orchestrator resolves commands, explicit triples or free text,
// into plugin invocations and drives single or multi-step execution.
//
// Free-text routing uses an AI-assisted parser when a credential is available,
// with a deterministic keyword matcher as the always-present fallback; the
// strategy is selected once at construction. Every failure is isolated into a
// typed Result: the orchestrator never lets an error escape to its caller.
// Workflows execute strictly sequentially and stop at the first failing step,
// because later steps may depend on earlier side effects.
package orchestrator
