// Package rewrite validates rewrite requests and dispatches them to
// the active language model backend. A dispatch is one blocking round
// trip: no streaming, no queue, no automatic retry. Validation
// failures never touch the network; transport and provider failures
// come back as typed errors the caller renders as explanatory text.
// Every attempt, successful or not, is recorded in the audit log.
package rewrite
