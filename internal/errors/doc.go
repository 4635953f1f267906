// Package apperrors holds the error classes the front ends branch on:
// configuration mistakes, rejected operands and collaborator failures,
// plus the mapping from those classes to process exit codes.
package apperrors
