package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrRecordNotFound is returned by repositories when a record id does
	// not exist.
	ErrRecordNotFound = goerr.New("record not found")

	// ErrOwnerScopeViolation means a candidate crossed the owner boundary.
	// This indicates an upstream scoping bug and must fail the whole query.
	ErrOwnerScopeViolation = goerr.New("owner scope violation")

	// ErrProtocolViolation means the reasoner output matched neither the
	// answer shape nor the exact refusal sentence.
	ErrProtocolViolation = goerr.New("reasoner output violates answer protocol")

	ErrInvalidConfidence = goerr.New("invalid confidence label")
)
