package sessions

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// hmacSigner signs session tokens with a symmetric HS256 secret.
type hmacSigner struct {
	secret []byte
}

func (h hmacSigner) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}
	return signed, nil
}

func (h hmacSigner) verificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}
