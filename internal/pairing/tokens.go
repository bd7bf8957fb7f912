package pairing

import (
	"encoding/hex"
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/DrTomLLC/StoryStream/internal/id"
)

const (
	tokenIssuer   = "storystream-device"
	tokenAudience = "storystream-peer"

	keyHexSize = 64 // 32 bytes as hex string
)

// HandshakeClaims identifies the device and pairing nonce a handshake token
// was issued for.
type HandshakeClaims struct {
	DeviceID string `json:"device_id"`
	Nonce    string `json:"nonce"`
}

// Service issues and verifies PASETO v4.local handshake tokens for the
// pairing flow: a device advertises itself over internal/mdns, a peer
// requests to pair, and this token is the short-lived credential exchanged
// while the operator approves or denies the request.
type Service struct {
	symmetricKey paseto.V4SymmetricKey
	tokenTTL     time.Duration
}

// NewService builds a handshake token service from a hex-encoded 32-byte
// PASETO v4 key (see LoadOrGenerateKey).
func NewService(keyHex string, tokenTTL time.Duration) (*Service, error) {
	if len(keyHex) != keyHexSize {
		return nil, fmt.Errorf("pairing: PASETO v4 key must be exactly %d hex characters, got %d", keyHexSize, len(keyHex))
	}
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("pairing: invalid hex key: %w", err)
	}
	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("pairing: build symmetric key: %w", err)
	}
	return &Service{symmetricKey: key, tokenTTL: tokenTTL}, nil
}

// IssueHandshakeToken mints a short-lived token naming deviceID as the
// pairing initiator, with a fresh random nonce the peer echoes back on
// approval so a stale or replayed request is rejected.
func (s *Service) IssueHandshakeToken(deviceID string) (string, error) {
	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(deviceID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.tokenTTL))

	nonce, err := id.Generate("nonce")
	if err != nil {
		return "", fmt.Errorf("pairing: generate nonce: %w", err)
	}
	token.SetJti(nonce)
	_ = token.Set("device_id", deviceID)
	_ = token.Set("nonce", nonce)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// VerifyHandshakeToken parses and validates a handshake token, returning the
// claims if it is unexpired and correctly addressed.
func (s *Service) VerifyHandshakeToken(tokenString string) (*HandshakeClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("pairing: invalid handshake token: %w", err)
	}

	var claims HandshakeClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("pairing: parse claims: %w", err)
	}
	return &claims, nil
}
