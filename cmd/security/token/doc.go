// Package token owns the process-wide secret used to sign bearer tokens.
//
// Design goals:
// - Production mode: the secret comes from CADASTRO_TOKEN_SECRET and must be at least 32 bytes.
// - Dev mode: when no secret is configured an ephemeral random secret is generated at startup;
//   tokens then stop validating after a restart.
// - Secret bytes are never logged; only a short fingerprint is exposed for diagnostics.
package token
