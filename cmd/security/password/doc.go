// Package password provides password hashing and verification for cadastro.
//
// Two adaptive, salted algorithms sit behind the Hasher interface:
// - bcrypt (default), via golang.org/x/crypto/bcrypt
// - Argon2id with a PHC-like encoded string, via golang.org/x/crypto/argon2
//
// It also owns the password policy (length bounds, optional weak-pattern rejection)
// and the environment configuration surface for both algorithms.
//
// Security notes:
// - Verification compares in constant time; a mismatch position is not observable.
// - Hash strings are treated as untrusted input during Verify and are validated accordingly.
// - Plaintext passwords never appear in returned errors.
package password
