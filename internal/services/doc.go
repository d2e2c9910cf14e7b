// Package services defines the error taxonomy shared by external engine
// clients. Stage failures are tagged with a sentinel error so callers can
// classify them without string matching.
package services
