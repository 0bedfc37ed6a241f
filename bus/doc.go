// Package bus implements the in-process publish/subscribe hub that decouples
// the platform's modules from one another. A booking module can react to a
// content pipeline transition, or a notification sender to a plugin lifecycle
// change, without either importing the other.
//
// Events are immutable, timestamped facts. Publish fans an event out to every
// subscribed handler concurrently and waits for all of them (scatter-gather);
// a handler failure is isolated and reported in the returned dispatch list,
// never propagated to the publisher. The bus keeps a bounded history of the
// most recent events for inspection and test assertions.
package bus
