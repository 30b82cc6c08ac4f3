/*
Package edn reads EDN (Extensible Data Notation) into an in-memory value
tree.

A read produces a Document holding the top-level forms. Every value in it is
allocated from one arena owned by the document, and strings, symbols,
keywords and big number digits point directly into the input buffer, so the
input must stay unmodified for as long as the values are used:

	doc, err := edn.Read(data)
	if err != nil {
		// handle error
	}
	defer doc.Release()

	key := doc.Arena().NewKeyword("", "name")
	name, ok := edn.Lookup(doc.Value(), key)

Values form a closed set of types (Nil, *Bool, *Int, *BigInt, *Float,
*BigDecimal, *Ratio, *Char, *String, *Symbol, *Keyword, *List, *Vector,
*Set, *Map, *Tagged and *External). Equal, Hash and Compare work
structurally; sets and maps are guaranteed free of duplicates.

Tagged literals are resolved through a Registry of reader functions. Tags
without a reader are kept, unwrapped or rejected according to the
FallbackMode. The discard form #_ reads and drops the next form without
running any reader inside it:

	reg := edn.NewRegistry()
	reg.RegisterBuiltins() // #inst and #uuid
	doc, err := edn.Read(data, edn.WithRegistry(reg), edn.WithFallback(edn.FallbackError))

Optional syntax (ratios, octal integers, digit separators, namespaced maps
and metadata) is switched on with options.

Unmarshal, Decoder and DecodeValue copy values into Go variables using
reflection, and Marshal and Encoder go the other way; struct fields are
matched to keyword keys through `edn` struct tags:

	var cfg struct {
		Name  string   `edn:"name"`
		Ports []int    `edn:"ports,omitempty"`
	}
	err := edn.Unmarshal([]byte(`{:name "api" :ports [80 443]}`), &cfg)

AppendIndent and the Indent option lay long collections out over several
lines.

A Document is not safe for concurrent use: decoded strings and hashes are
cached in place on first use. Separate reads may run concurrently as long
as registries are not modified meanwhile.
*/
package edn
