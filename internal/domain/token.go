package domain

// TokenPair is what every login path returns: two JWTs with identical
// claims but different kinds and expiry horizons. The refresh horizon is
// always the longer of the two, and the tokens are only ever minted
// together.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Principal is the authenticated identity carried inside a token. It is
// never persisted server-side as a session object; it lives and dies with
// the token.
type Principal struct {
	ID    string
	Email string
	Role  string
}
