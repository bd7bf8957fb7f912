package providers

import (
	"encoding/hex"

	"github.com/samber/do/v2"

	"github.com/DrTomLLC/StoryStream/internal/config"
	"github.com/DrTomLLC/StoryStream/internal/logger"
	"github.com/DrTomLLC/StoryStream/internal/pairing"
)

// PairingKey wraps the pairing handshake signing key bytes.
type PairingKey []byte

// ProvidePairingKey loads or generates the key pairing.Service signs
// handshake tokens with.
func ProvidePairingKey(i do.Injector) (PairingKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := pairing.LoadOrGenerateKey(cfg.Metadata.BasePath)
	if err != nil {
		return nil, err
	}
	log.Info("pairing handshake key loaded", "ttl", cfg.Sync.PairingTokenTTL)
	return PairingKey(key), nil
}

// ProvidePairingService provides the PASETO-backed pairing handshake
// service used by mDNS-discovered sync pairing requests.
func ProvidePairingService(i do.Injector) (*pairing.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[PairingKey](i)

	keyHex := hex.EncodeToString([]byte(key))
	return pairing.NewService(keyHex, cfg.Sync.PairingTokenTTL)
}
