// Package rollback removes the resources a failed install created.
//
// Only the tenant and user recorded in the run state are deleted. Each
// deletion is attempted independently so a failure on one does not leave
// the other behind. Configuration files and the installed framework are kept.
package rollback
