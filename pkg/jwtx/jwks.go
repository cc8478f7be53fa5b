package jwtx

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"sync"
)

// JWK is a single RSA public key as published in a JSON Web Key Set.
// Only the fields needed for RS256 verification are modelled.
type JWK struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// JWKS is a JSON Web Key Set document.
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// RSAPublicKey decodes the modulus and exponent into an rsa.PublicKey.
func (k JWK) RSAPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("jwtx: unsupported key type %q", k.Kty)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, errors.New("jwtx: zero exponent")
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

// KeySet is a concurrency-safe kid-indexed set of RSA public keys.
type KeySet struct {
	mu   sync.RWMutex
	keys map[string]*rsa.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]*rsa.PublicKey)}
}

// Get returns the key for the given kid.
func (s *KeySet) Get(kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.keys[kid]
	if !ok {
		return nil, fmt.Errorf("jwtx: unknown kid %q", kid)
	}
	return key, nil
}

// Replace swaps the entire set with the keys from a JWKS document.
// Unparseable keys are skipped; at least one key must survive.
func (s *KeySet) Replace(doc JWKS) error {
	next := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		pub, err := jwk.RSAPublicKey()
		if err != nil {
			continue
		}
		next[jwk.Kid] = pub
	}
	if len(next) == 0 {
		return errors.New("jwtx: no usable keys in JWKS")
	}

	s.mu.Lock()
	s.keys = next
	s.mu.Unlock()
	return nil
}

// Len reports the number of keys currently held.
func (s *KeySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
