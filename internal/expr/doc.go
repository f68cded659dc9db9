// Package expr parses and evaluates parameter value expressions.
//
// A raw expression is a comma-separated list of terms. Each term is one of:
//
//   - a range, `start:end` or `start:end:step`, over integers with an
//     exclusive end;
//   - an arithmetic expression built from numbers, parameter references,
//     `+`, `*` and `^`. A number written directly before an identifier
//     multiplies it, so `32n` means `32 * n`;
//   - a literal string, for any term that is not a valid expression and
//     contains none of `+ * ^ , :`.
//
// Values are carried as cty values of type Number or String and rendered
// with Render, which drops a zero fractional part.
package expr
