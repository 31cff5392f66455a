// Package llm turns free-form generative backend responses into typed
// estimation data. It provides two backend protocols behind the Caller
// interface, a tolerant JSON recoverer, and the Estimator that runs the
// extract, score, propose and match stages with retry and rate limiting.
package llm
