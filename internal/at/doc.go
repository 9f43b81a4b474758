// Package at rewrites Access Transformer directive lines from one naming
// scheme to another.
//
// A directive is a single line of the form
//
//	<modifier> <target> [# comment]
//
// where the target names a class and optionally one of its members. Two
// encodings exist and the caller picks one explicitly:
//
//   - DialectInternal: "public net.minecraft.Foo bar": class and member are
//     separate tokens, at most 3 tokens per line.
//   - DialectQualified: "public Foo.bar": class and member are joined with
//     '.', '$' marks nested classes, at most 2 tokens per line.
//
// RemapLine never fails. Blank lines, comment-only lines and lines with too
// many tokens are returned unchanged; names unknown to the Mappings keep their
// original spelling. Comments are never parsed and never altered.
package at
