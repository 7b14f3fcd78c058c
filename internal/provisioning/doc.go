// Package provisioning provides shared types and orchestration for the install run.
//
// # Subpackages
//
//   - configure/: framework version lookup, configuration collection and persistence
//   - framework/: framework artifact install
//   - tenant/: application server startup and master tenant creation
//   - superuser/: super user registration and permission grant
//   - frontend/: optional front-end build
//   - rollback/: removal of resources created by a failed run
//
// # Core Types
//
// Context carries the run mode, collaborators, observer, and state.
// Phase defines a step with Name(), Stage() and Provision() methods.
// Pipeline drives the phases through the Stage machine and hands the
// abort path to the rollback phase.
package provisioning
