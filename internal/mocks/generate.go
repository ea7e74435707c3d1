// Package mocks provides mock implementations for testing the portal services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	dir := mocks.NewMockDirectory(ctrl)
//	dir.EXPECT().Lookup(gomock.Any(), "alice@x.com").Return(domainauth.Account{}, domainauth.ErrAccountNotFound)
package mocks

// Generate mock for Directory interface from internal/ports package.
// This creates MockDirectory with methods for all Directory interface methods:
// Lookup, Upsert, ListByRole
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=directory_mock.go github.com/target/content-portal/internal/ports Directory

// Generate mock for ContentRepository interface from internal/ports package.
// This creates MockContentRepository with methods for all ContentRepository interface methods:
// Create, List, SetEnabled, SoftDelete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=content_repository_mock.go github.com/target/content-portal/internal/ports ContentRepository

// Generate mock for ReturnToSlot interface from internal/ports package.
// This creates MockReturnToSlot with methods for all ReturnToSlot interface methods:
// Save, Load, Clear
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=returnto_slot_mock.go github.com/target/content-portal/internal/ports ReturnToSlot
