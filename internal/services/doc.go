// Package services defines shared utilities consumed by the browsing stages
// and the external collaborators they drive.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, collection kinds, page numbers
//     and stage names for logging.
//   - Structured error markers plus the Wrap helper that keep fetch, download
//     and render failures distinguishable after wrapping.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
