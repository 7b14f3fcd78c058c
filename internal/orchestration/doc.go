// Package orchestration wires the install phases into a pipeline.
//
// It defines the execution order and delegates the actual work to the
// provisioners in the internal/provisioning subpackages.
//
// # Workflow
//
// The Installer executes the following phases in order:
//  1. Configure - Framework version lookup, settings collection and persistence
//  2. Framework - Framework artifact install
//  3. Tenant - Application server startup and master tenant creation
//  4. Superuser - Super user registration and Super Admin grant
//  5. Frontend - Optional front-end build
//
// A failed phase aborts the run. Unless the failure was a configuration
// write, the rollback phase then removes the tenant and user created so far.
//
// # Usage
//
//	installer := orchestration.NewInstaller(opts, deps)
//	state, err := installer.Run(ctx)
package orchestration
