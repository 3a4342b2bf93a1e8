// Package client contains client-side building blocks for IdeaForge.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     plans, versions, share links, presence, chat and exports.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects the access token and the share token via
//     interceptors, and maps gRPC status codes back to the sentinel errors
//     of internal/common.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the CLI,
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Server-side conditions come back as common.ErrorNotFound,
// common.ErrVersionConflict, common.ErrorForbidden, common.ErrorUnauthorized,
// common.ErrorValidation and *common.UpstreamError. Transport failures are
// reported as ErrUnavailable.
//
// # Share tokens
//
// Calls made on behalf of a share-link viewer carry the token in the
// context, see WithShareToken.
package client
