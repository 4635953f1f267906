// Package euclid computes the greatest common divisor of two positive integers
// with the Euclidean algorithm and records every remainder step so the
// computation can be displayed and explained.
package euclid
