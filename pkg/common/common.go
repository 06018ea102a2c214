package common

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/gommon/random"
)

const (
	NA       = "N/A"
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	var err error
	snowflakeNode, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// UUIDint64 returns a snowflake int64 ID
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns a snowflake ID in base58 string form
func UUID() string {
	return snowflakeNode.Generate().Base58()
}

// RandomToken returns an alphanumeric token of n characters
func RandomToken(n uint8) string {
	return random.String(n)
}

// GetSecretSalt reads the shared secret salt from the environment,
// falling back to a fixed development value.
func GetSecretSalt() string {
	salt := os.Getenv("LACARTE_SECRET_SALT")
	if salt == "" {
		salt = "lacarte-dev-salt"
	}
	return salt
}

// Sha256HashWithSalt hashes value+salt, used for non-credential digests
// (session fingerprints, cache keys). Passwords use bcrypt, not this.
func Sha256HashWithSalt(value, salt string) string {
	sum := sha256.Sum256([]byte(value + salt))
	return fmt.Sprintf("%x", sum)
}

// IsEmptyOrNA checks a settings value for the unset markers
func IsEmptyOrNA(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == NA
}
