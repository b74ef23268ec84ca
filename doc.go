// Package opcoes computes the results of an options trading book on the
// Brazilian market (B3).
//
// A book is made of positions (bought or sold calls and puts), the closings
// that terminate them, the collaterals pledged to cover them and the result
// goals of the trader. The package is a pure calculator: every function takes
// a fully materialized Snapshot and returns values, without I/O or hidden
// state.
//
// The core functionalities include:
//   - Valuation: realized result, maximum gain or loss, result percentage,
//     strike/quote divergence and exercise figures of a position.
//   - Risk: banding of the divergence depending on direction and type.
//   - Coverage: allocation of equity and fixed-income collaterals to open
//     positions and detection of leverage (shortfall).
//   - Aggregation: monthly or yearly buckets of realized results.
//   - Goals and dashboard: progress towards result goals and a summary of
//     the open book.
//   - Persistence format: encoding and decoding of a book as JSONL.
//
// All amounts are in reais (BRL). This package serves as the foundational
// logic for the `opc` command-line tool.
package opcoes
