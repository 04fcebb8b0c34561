// Package export writes clustering reports into a blobstore.Store.
//
// A report holds one CSV distance table per recorded iteration plus a JSON
// snapshot of the session:
//
//	<prefix>/iteration-001.csv[.zst|.lz4]
//	<prefix>/iteration-002.csv[.zst|.lz4]
//	...
//	<prefix>/snapshot.json
//
// Tables are written concurrently; clustering itself is never touched.
package export
