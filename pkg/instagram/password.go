package instagram

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/crypto/nacl/box"
)

const (
	passwordPrefix         = "#PWD_INSTAGRAM_BROWSER"
	passwordVersionPlain   = 0
	passwordVersionSealed  = 10
	passwordEnvelopeFormat = 1
)

// plainPassword is the unencrypted enc_password form
func plainPassword(password string, now time.Time) string {
	return fmt.Sprintf("%s:%d:%d:%s", passwordPrefix, passwordVersionPlain, now.Unix(), password)
}

// encryptPassword seals password for the browser login endpoint.
//
// The password is encrypted with a random AES-256-GCM key (zero nonce, the
// timestamp as additional data) and that key is sealed to the server's
// Curve25519 public key. Envelope layout:
//
//	[1][keyID][len(sealedKey) uint16 LE][sealedKey][gcm tag][ciphertext]
func encryptPassword(password string, keyID int, publicKeyHex string, now time.Time) (string, error) {
	return encryptPasswordWithRand(rand.Reader, password, keyID, publicKeyHex, now)
}

func encryptPasswordWithRand(random io.Reader, password string, keyID int, publicKeyHex string, now time.Time) (string, error) {
	if keyID < 0 || keyID > 255 {
		return "", fmt.Errorf("key id %d out of range", keyID)
	}

	rawKey, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return "", fmt.Errorf("invalid public key: %w", err)
	}
	if len(rawKey) != 32 {
		return "", fmt.Errorf("public key must be 32 bytes, got %d", len(rawKey))
	}
	var publicKey [32]byte
	copy(publicKey[:], rawKey)

	sessionKey := make([]byte, 32)
	if _, err := io.ReadFull(random, sessionKey); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	block, err := aes.NewCipher(sessionKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	timestamp := strconv.FormatInt(now.Unix(), 10)
	nonce := make([]byte, gcm.NonceSize())
	sealed := gcm.Seal(nil, nonce, []byte(password), []byte(timestamp))
	tagStart := len(sealed) - gcm.Overhead()
	ciphertext, tag := sealed[:tagStart], sealed[tagStart:]

	sealedKey, err := box.SealAnonymous(nil, sessionKey, &publicKey, random)
	if err != nil {
		return "", fmt.Errorf("failed to seal key: %w", err)
	}

	envelope := make([]byte, 0, 4+len(sealedKey)+len(tag)+len(ciphertext))
	envelope = append(envelope, passwordEnvelopeFormat, byte(keyID))
	envelope = binary.LittleEndian.AppendUint16(envelope, uint16(len(sealedKey)))
	envelope = append(envelope, sealedKey...)
	envelope = append(envelope, tag...)
	envelope = append(envelope, ciphertext...)

	return fmt.Sprintf("%s:%d:%s:%s", passwordPrefix, passwordVersionSealed, timestamp,
		base64.StdEncoding.EncodeToString(envelope)), nil
}
