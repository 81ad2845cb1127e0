// Package notes classifies note lines by their leading markup symbol and
// splits free-form note text into tagged blocks.
//
// Four symbols are recognized at the start of a line: "-" marks a general
// note, "?" a question, "~" an uncertain understanding, and "!" an important
// concept. Anything else is an untagged note. Classification is a pure
// function of the first non-whitespace character and is idempotent.
package notes
