package password

import "fmt"

// Hasher is the credential hashing contract used by the rest of the service.
//
// Verify returns (true, nil) for a match, (false, nil) for a mismatch
// and (false, ErrInvalidHash) for malformed or unsupported hashes.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) (bool, error)
}

// Algorithm names accepted by Config.Algorithm.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// NewHasher returns the Hasher selected by c.Algorithm.
// Policy validation runs inside Hash, so callers get ErrPasswordTooShort & co. from it.
func (c Config) NewHasher() (Hasher, error) {
	switch c.Algorithm {
	case AlgorithmBcrypt, "":
		return BcryptHasher{Cost: c.BcryptCost, Policy: c.Policy}, nil
	case AlgorithmArgon2id:
		return Argon2idHasher{Params: c.Params, Policy: c.Policy}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, c.Algorithm)
	}
}
