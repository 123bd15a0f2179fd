/*
Package scanless is a scannerless, fluent grammar-construction library and
parser engine.

A grammar is declared as a graph of named and anonymous rules and token
patterns (see Grammar, TokenDef, RuleDef). Compiling the graph (Compile)
produces an immutable Parser that, given an input string, produces either a
lazy abstract syntax tree plus a transformed value (Parser.Parse,
Parser.ParseRule), or a direct intermediate value via token-level
combinators that bypass AST construction entirely (Parser.MatchToken).

Package structure:

■ scanless (this package): the data model of rules and token patterns, the
scannerless matching algorithm, skip strategies, barrier-token support,
the lazy AST, error collection/reporting and error recovery.

■ scanless/errs: the error taxonomy, ParsingError, error groups and their
rendering.

■ scanless/trie: longest-match lookup used by literal-choice and
keyword-choice tokens.

■ scanless/runtime: call-stack frames and walk-trace buffers used for
diagnostics.

■ scanless/indent: a built-in INDENT/DEDENT/NEWLINE barrier tokenizer for
indentation-sensitive grammars.

Building a grammar (the fluent `.Literal`, `.OneOrMoreSeparated`, ...
surface) is deliberately not part of this package: any façade may be used
as long as it ultimately produces a Grammar graph.
*/
package scanless
