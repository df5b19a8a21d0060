package function

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
)

const passwordChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// GetRandomPassword returns a password safe to place unquoted in an env file.
func GetRandomPassword(n int) string {
	result := make([]byte, n)
	max := big.NewInt(int64(len(passwordChars)))
	for i := 0; i < n; i++ {
		pos, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		result[i] = passwordChars[pos.Int64()]
	}
	return string(result)
}

func GetSha256(str []byte) string {
	hash := sha256.New()
	hash.Write(str)
	return fmt.Sprintf("sha256:%x", hash.Sum(nil))
}
