// Package testing provides test doubles, builders, and fixtures shared by the
// installer's unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - RecordBuilder: fluent builder for configuration records
//   - ScriptedPrompter: a Prompter that replays canned answers
//   - MockInstaller: testify mock of the framework installer
//   - FakeApplication: application server double backed by an in-memory store
//
// Usage:
//
//	record := testing.NewRecordBuilder().
//	    With(config.KeyDBName, "adapt-test").
//	    Build()
//
//	app := testing.NewFakeApplication()
//	app.Store.Register("courses", 2)
package testing
