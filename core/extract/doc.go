// Package extract turns the page text of contract schedule documents into
// canonical trips and stops.
//
// Pages are folded left to right: the contract identifier, the schedule date
// and the detected layout found on one page carry forward to the next. Two
// layout families are understood, a flat row-per-stop table and a free-text
// layout where each trip block ends with a miles/hours summary line.
// Structural problems abort the whole document with a *DocumentError; purely
// cosmetic rows are dropped.
package extract
