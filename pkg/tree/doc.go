// Package tree compacts the narrative threads of an anchor into a branching
// tree and answers which threads pass through a given link.
//
// # Columns
//
// Threads are walked outward from the anchor one hop at a time. Items met
// at the same hop distance on the same side share a [Node], so parallel
// threads merge. [BuildColumns] builds one side, [BuildAnchor] links the
// anchor to the first column of both sides and [Build] does both.
//
// Each new node receives a row relative to the anchor. It stays on the side
// of its predecessor; the anchor's direct neighbours alternate, filling
// whichever side currently has fewer nodes.
//
// # Layout
//
// [Tree.Layout] turns columns and rows into canvas coordinates. The result
// is a separate [Layout] value, so a tree can be laid out for several
// canvases at once.
//
// # Queries
//
// [BuildThreadList] recovers the original threads using one link of the
// tree. Because merged nodes lose which thread went where, every branch
// around the link is expanded and the candidates are matched back against
// the thread list, so the answer is exact.
package tree
