// Package report defines the investigation report model and its renderers.
//
// A Report aggregates profile metadata, per-post metadata, and the derived
// engagement, temporal, and risk sections. The Exporter writes it as JSON
// and Markdown (atomically, and concurrently when both are requested), and
// Summary renders a styled console digest.
package report
