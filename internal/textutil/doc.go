// Package textutil provides small text helpers shared across the project.
//
// The primary use cases are:
//   - Deriving filesystem- and URL-safe slugs from course and lecture titles,
//     including collision suffixing ("-2", "-3", ...)
//   - Producing single-line, length-capped snippets of large payloads for logs
//
// Slugs lowercase their input, transliterate accented characters to their
// ASCII base form, and collapse every other character run into single hyphens.
package textutil
