package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fhuszti/videonft-ms-go/internal/api_context"
	"github.com/fhuszti/videonft-ms-go/internal/handler"
	"github.com/golang-jwt/jwt/v4"
)

const (
	tokenIssuer   = "core"
	tokenAudience = "videonft"
	// walletClaim carries the address the user connected with, if any.
	walletClaim = "wallet"
	// iatLeeway tolerates clock skew between the issuer and this service.
	iatLeeway = 30 * time.Second
)

// identity is what a valid token tells us about the caller.
type identity struct {
	subject string
	wallet  string
}

// WithDSTAuth validates a short-lived RS256 bearer token issued by core. The
// subject becomes the session owner and the log uid; the optional wallet
// claim is the default mint recipient.
func WithDSTAuth(jwtPublicKeyPEM string) func(http.Handler) http.Handler {
	// anonymous sessions when no public key is configured
	if jwtPublicKeyPEM == "" {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	pubKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(jwtPublicKeyPEM))
	if err != nil {
		panic(fmt.Sprintf("invalid JWT_PUBLIC_KEY: %v", err))
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
	)
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return pubKey, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				handler.WriteError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}

			claims := jwt.MapClaims{}
			tok, err := parser.ParseWithClaims(strings.TrimPrefix(auth, "Bearer "), claims, keyFunc)
			if err != nil || !tok.Valid {
				handler.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}

			id, reason := verifyClaims(claims, time.Now())
			if reason != "" {
				handler.WriteError(w, http.StatusUnauthorized, reason, nil)
				return
			}

			ctx := context.WithValue(r.Context(), api_context.AuthUserIDKey, id.subject)
			if id.wallet != "" {
				ctx = context.WithValue(ctx, api_context.AuthWalletKey, id.wallet)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verifyClaims returns the caller identity, or the reason the token is
// refused.
func verifyClaims(claims jwt.MapClaims, now time.Time) (identity, string) {
	if !claims.VerifyIssuer(tokenIssuer, true) {
		return identity{}, "bad issuer"
	}
	if !claims.VerifyAudience(tokenAudience, true) {
		return identity{}, "bad audience"
	}
	if !claims.VerifyExpiresAt(now.Unix(), true) {
		return identity{}, "token expired"
	}
	if iat, ok := asInt64(claims["iat"]); ok && time.Unix(iat, 0).After(now.Add(iatLeeway)) {
		return identity{}, "invalid iat"
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return identity{}, "missing sub"
	}

	id := identity{subject: sub}
	if raw, present := claims[walletClaim]; present {
		addr, _ := raw.(string)
		if !common.IsHexAddress(addr) {
			return identity{}, "invalid wallet"
		}
		id.wallet = common.HexToAddress(addr).Hex()
	}
	return id, ""
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case json.Number:
		i, err := x.Int64()
		if err == nil {
			return i, true
		}
	}
	return 0, false
}
