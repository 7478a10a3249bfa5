// Package item defines the read-only inputs of the narrative engine.
//
// An [Item] is a short, timestamped text with an author and a set of
// hashtags. A [Corpus] bundles the item collection with a [MentionIndex]
// (who is referenced by which item) and a [Dissimilarity] oracle supplied
// by a text-similarity collaborator such as [textsim.TFIDF].
//
// Item IDs are positions in the corpus; [NewCorpus] re-indexes its input so
// that the invariant always holds.
//
// The package also carries the minimal ingestion helpers needed to build a
// corpus from raw [Record] values: timestamp parsing, hashtag and mention
// extraction.
//
// [textsim.TFIDF]: github.com/matzehuels/narrative/pkg/textsim
package item
