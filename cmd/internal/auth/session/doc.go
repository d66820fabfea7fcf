// Package session implements cadastro's bearer-token service.
//
// Tokens are issued as HS256 JWTs signed with the process-wide secret and carry
// the subject username plus an absolute expiry. Validation runs an ordered chain
// of verification strategies:
//
//  1. JWT: signature, algorithm, issuer and expiry against the caller's clock.
//  2. Marker (optional, degraded mode): "fallback_token_<username>", accepted only
//     while the identity registry still holds that username. It has no expiry
//     and no integrity protection, so it is disabled unless explicitly enabled.
//
// There is no revocation list: a token stays valid until its expiry elapses.
package session
