// Package middleware wraps journals with redaction and encryption of recorded values.
package middleware
