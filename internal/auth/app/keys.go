package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
)

// InitAuthKeys builds the access token signer from JWT_SECRET and a verifier
// that also accepts tokens signed with any JWT_PREVIOUS_SECRETS entry, so a
// secret can be rotated without logging everyone out.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.HS256Signer, *jwtx.HS256Verifier, error) {
	signer, err := jwtx.NewSignerHS256([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, nil, fmt.Errorf("access signer: %w", err)
	}

	secrets := make([][]byte, 0, 1+len(cfg.JWTPreviousSecrets))
	secrets = append(secrets, []byte(cfg.JWTSecret))
	for _, prev := range cfg.JWTPreviousSecrets {
		secrets = append(secrets, []byte(prev))
	}
	verifier := jwtx.NewVerifierHS256(cfg.Issuer, secrets...)

	logger.Info("access token keys loaded",
		"kid", signer.KID(),
		"retired_keys", len(cfg.JWTPreviousSecrets),
	)
	return signer, verifier, nil
}
