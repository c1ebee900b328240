package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of plain at the given cost.  Costs
// below bcrypt's minimum fall back to the library default so a missing
// or zero BCRYPT_COST never produces weaker hashes.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// The comparison is constant-time inside bcrypt.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
