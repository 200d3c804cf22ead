// Package kms exposes the buffer crypto facade as a gRPC service.
//
// Messages travel as JSON through a codec registered under the "json"
// content subtype, so no generated stubs are needed. Client maps status codes
// back to the base sentinels, a remote Decrypt fails with the same
// errors.Is(err, base.ErrInvalidState) as a local one.
package kms
