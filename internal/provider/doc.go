// Package provider abstracts the locally hosted language model
// backends. Every backend is a localhost HTTP server reduced to one
// capability shape: a cheap probe that reports the loaded model, and a
// single-shot prompt completion.
//
// A Detector probes the configured backends in a fixed priority order;
// the first one to answer within the probe timeout is the active
// provider for that cycle. Detection carries no stickiness between
// cycles. A Launcher can start the preferred backend and poll for it
// to come up within a bounded window.
package provider
