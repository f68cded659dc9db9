// Package outparse extracts numeric metrics from the free-form text an
// experiment prints.
//
// Each line is scanned for numbers. The text between the previous number and
// the current one becomes the number's label, so "loss: 0.3 acc: 0.9" yields
// "loss" and "acc". A number glued to a letter or digit on its left is not a
// number at all, which keeps "F1" and "v2" out of the results. A carriage
// return inside a line discards everything before it, the way a terminal
// shows a redrawn progress bar. A label seen again replaces the earlier
// value.
package outparse
