// Package internal provides the core of qexpand, a rewriter from free-form
// dictionary search input to backend query strings.
//
// A query passes through three stages:
//
// Lexer (package lexer): splits the input into typed tokens such as terms,
// phrases, regexes, fuzzy terms, operators and parentheses, and scopes each
// token to a field when it carries a known "field:" prefix.
//
// Normalizer (package grammar): validates the token sequence and inserts the
// implicit AND operators and grouping parentheses, so that NOT binds to its
// right operand and AND binds tighter than OR.
//
// Renderer (package render): expands every token into a main query clause, a
// highlight clause and facet clauses. Package facet aggregates the facet
// clauses of all tokens.
//
// Engine ties the stages together and returns a types.Bundle holding the main
// query, highlight query, field lists, facet queries and parser mode. Failures
// are reported as *types.QueryError values that carry a kind and the position
// of the offending token.
//
// Usage:
//
//	engine, err := internal.NewEngine(internal.DefaultOptions(), logger)
//	if err != nil {
//	    // handle error
//	}
//
//	bundle, err := engine.Expand("lemma:imbis OR zitat:\"guten tag\"")
//	if err != nil {
//	    // report the error to the user
//	}
//	fmt.Println(bundle.MainQuery)
//
// Watcher keeps an engine in sync with a configuration file and is used by
// the HTTP server to reload field settings without a restart.
package internal
