// Package similarity scores how plausibly two items belong to the same
// narrative.
//
// # Score
//
// [Scorer.Score] first rejects pairs whose textual overlap (one minus the
// corpus dissimilarity) is below a text threshold. Accepted pairs receive
// the uncapped sum of five components:
//
//   - text overlap, weighted 0.5
//   - shared hashtags, up to three, weighted 0.15
//   - temporal proximity, linear decay over 24 hours, weighted 0.10
//   - 0.25 when the candidate mentions the anchor's author
//   - 0.05 when both items share an author
//
// The sum can slightly exceed 1.0. [Scorer.Explain] exposes the components.
//
// # Similarity Set
//
// [Scorer.BuildSet] selects the items scoring at least the overall threshold
// against an anchor. The anchor is always a member with score 1.0.
package similarity
