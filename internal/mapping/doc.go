// Package mapping loads and queries symbol mapping tables.
//
// A Table translates class, field and method names (and method descriptors)
// from a source naming scheme to a target one. Tables are read from SRG,
// TSRG, TSRG2 (first two namespaces) and CSRG files:
//
//	t, err := mapping.Load("mcp_to_srg.tsrg")
//	name := t.RemapClass("net/minecraft/Foo")
//	desc := t.RemapDescriptor("(Lnet/minecraft/Foo;)V")
//
// Reverse returns the inverse table. Cache keeps parsed tables on disk,
// keyed by the SHA-256 of the source file.
package mapping
