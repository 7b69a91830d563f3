// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength         = 16
	refreshTokenLength = 32
)

var errMalformedHash = errors.New("malformed password hash")

// argonParams is the cost encoded in a PHC string:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

// passwordCost applies to every new hash. Stored hashes with a different
// cost are upgraded on the next successful login.
var passwordCost = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func (p argonParams) encode(salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

type decodedHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func parseHash(encoded string) (*decodedHash, error) {
	fields := strings.Split(strings.TrimPrefix(encoded, "$"), "$")
	if len(fields) != 5 || fields[0] != "argon2id" {
		return nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[1], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: version %q", errMalformedHash, fields[1])
	}

	d := &decodedHash{}
	if _, err := fmt.Sscanf(fields[2], "m=%d,t=%d,p=%d",
		&d.params.memory, &d.params.time, &d.params.threads); err != nil {
		return nil, fmt.Errorf("%w: params: %v", errMalformedHash, err)
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(fields[3]); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", errMalformedHash, err)
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return nil, fmt.Errorf("%w: key: %v", errMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	d.params.keyLen = uint32(len(d.key))
	return d, nil
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return passwordCost.encode(salt, passwordCost.derive(password, salt)), nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	d, err := parseHash(encodedHash)
	if err != nil {
		return false, err
	}
	candidate := d.params.derive(password, d.salt)
	return subtle.ConstantTimeCompare(d.key, candidate) == 1, nil
}

// VerifyPasswordWithRehash also returns a fresh hash when the stored one
// was made with an outdated cost. The rehash is empty otherwise.
func VerifyPasswordWithRehash(password, encodedHash string) (bool, string, error) {
	d, err := parseHash(encodedHash)
	if err != nil {
		return false, "", err
	}

	if subtle.ConstantTimeCompare(d.key, d.params.derive(password, d.salt)) != 1 {
		return false, "", nil
	}

	if d.params == passwordCost {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password matched; keep the old hash
		return true, "", nil
	}
	return true, upgraded, nil
}

var equalizerHash = sync.OnceValue(func() string {
	hash, err := HashPassword("pastelazo-timing-equalizer")
	if err != nil {
		panic(fmt.Sprintf("security: equalizer hash: %v", err))
	}
	return hash
})

// VerifyPasswordTimingSafe spends the same argon2 work whether or not the
// account exists. A nil or empty hash never verifies.
func VerifyPasswordTimingSafe(password string, encodedHash *string) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		//nolint:errcheck // only the cost matters
		_, _ = VerifyPassword(password, equalizerHash())
		return false, "", nil
	}
	return VerifyPasswordWithRehash(password, *encodedHash)
}

// GenerateRefreshToken returns an opaque URL-safe token. Only its
// HashToken digest is stored.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
