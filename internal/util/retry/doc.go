// Package retry polls an operation with capped exponential backoff.
//
// [Poll] is used to wait for the application server to accept requests after
// it has been started. Errors wrapped with [Fatal] stop polling immediately.
package retry
