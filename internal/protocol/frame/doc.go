// Package frame moves complete Zusi messages over a byte stream.
//
// A message is one outermost start-of-node ... end-of-node pair. Writers
// flush after the final end-of-node marker; readers consume exactly one
// message per call.
package frame
