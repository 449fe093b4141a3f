// Package protocol owns the Zusi tree model and its wire codec.
//
// Ownership boundary:
// - node/attribute tree model and builders
// - attribute value codec (little-endian scalars, UTF-8 text)
// - recursive start/end marker framing (Encode/Decode)
// - depth-first id path navigation
//
// Exchange semantics (HELLO, NEEDED_DATA) live in the session package;
// ids and acknowledgement validation live in the schema package.
package protocol
