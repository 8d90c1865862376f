// Package testutil provides testing utilities for workhorse.
//
// This package contains mock errors and fixtures used across test files.
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors are used to simulate various failure scenarios in tests.
var (
	// ErrMockDisk indicates a mock disk failure (used in tests).
	ErrMockDisk = errors.New("disk failure")

	// ErrMockGit indicates a mock git command failed (used in tests).
	ErrMockGit = errors.New("git command failed")

	// ErrMockNotFound indicates a mock resource was not found (used in tests).
	ErrMockNotFound = errors.New("not found")

	// ErrMockSpawn indicates a mock process could not be started (used in tests).
	ErrMockSpawn = errors.New("spawn failed")
)
