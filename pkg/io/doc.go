// Package io provides JSON import and export for item records.
//
// # Overview
//
// Items reach the engine as raw records, typically dumped from a social
// feed. This package reads and writes such dumps in two layouts:
//
//   - a JSON array of records
//   - JSON Lines, one record per line
//
// [ReadRecords] detects the layout from the first non-space byte.
//
// # JSON Format
//
//	[
//	  {"timestamp": "Mon Aug 22 09:00:00 +0000 2011", "text": "storm warning #irene", "author": "weather"},
//	  {"timestamp": "2011-08-22T10:00:00Z", "text": "evacuations ordered @weather", "author": "city"}
//	]
//
// Required fields:
//   - timestamp: RFC 3339, the feed layout shown above, or Unix milliseconds
//   - text: the item text
//
// Optional fields:
//   - author: the poster's handle, matched against @mentions
//   - hashtags: explicit tags; extracted from the text when omitted
//
// # Import
//
// Use [ImportItems] to read items from a file path, or [ReadItems] to read
// from any io.Reader:
//
//	items, err := io.ImportItems("irene.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Item ids follow record order, so the n-th record becomes item n.
//
// # Export
//
// Use [ExportItems] to write items to a file, or [WriteItems] to write to
// any io.Writer. Export writes the array layout with RFC 3339 timestamps;
// importing the output yields equal items.
package io
