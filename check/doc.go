// Package check contains the individual stages of the validation
// pipeline: syntax, domain policy, MX resolution and the SMTP probe.
// The pipeline in the root package wires them together.
package check
