package session

import (
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

const (
	typAccess  = "access"
	typRefresh = "refresh"
)

// AccessClaims is the identity envelope carried by access tokens.
type AccessClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Issuer    string
}

// RefreshClaims is the minimal envelope carried by refresh tokens. Email is
// deliberately absent: a refresh token proves possession, not identity detail.
type RefreshClaims struct {
	UserID    string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Issuer    string
}

// TokenManager issues and verifies the signed access and refresh tokens.
type TokenManager interface {
	IssueAccess(userID, email string, now time.Time) (token string, exp time.Time, err error)
	IssueRefresh(userID string, now time.Time) (token string, exp time.Time, err error)
	VerifyAccess(token string, now time.Time) (AccessClaims, error)
	VerifyRefresh(token string, now time.Time) (RefreshClaims, error)
	PublicKeyHex() string
	RefreshTTL() time.Duration
}

type pasetoV4PublicManager struct {
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clockSkew  time.Duration

	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

// NewPasetoV4PublicManager builds a TokenManager based on PASETO v4.public.
//
// It uses an Ed25519 asymmetric keypair and enforces issuer and expiration
// rules. Clock skew is applied during verification via ValidAt to tolerate
// minor clock differences.
func NewPasetoV4PublicManager(cfg Config) (TokenManager, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromHex(cfg.PasetoV4SecretKeyHex)
	if err != nil {
		return nil, ErrConfig
	}

	return &pasetoV4PublicManager{
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		clockSkew:  cfg.ClockSkew,
		secret:     secret,
		public:     secret.Public(),
	}, nil
}

func (m *pasetoV4PublicManager) PublicKeyHex() string {
	return m.public.ExportHex()
}

func (m *pasetoV4PublicManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

func (m *pasetoV4PublicManager) IssueAccess(userID, email string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.accessTTL)

	tok := m.baseToken(now, exp, typAccess)
	_ = tok.Set("uid", userID)
	_ = tok.Set("email", email)

	return tok.V4Sign(m.secret, nil), exp, nil
}

func (m *pasetoV4PublicManager) IssueRefresh(userID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.refreshTTL)

	tok := m.baseToken(now, exp, typRefresh)
	_ = tok.Set("uid", userID)

	return tok.V4Sign(m.secret, nil), exp, nil
}

func (m *pasetoV4PublicManager) baseToken(now, exp time.Time, typ string) paseto.Token {
	tok := paseto.NewToken()
	tok.SetIssuer(m.issuer)
	tok.SetIssuedAt(now)
	tok.SetNotBefore(now) // Tokens are valid immediately.
	tok.SetExpiration(exp)
	_ = tok.Set("typ", typ)
	return tok
}

func (m *pasetoV4PublicManager) VerifyAccess(token string, now time.Time) (AccessClaims, error) {
	parsed, err := m.parse(token, now, typAccess)
	if err != nil {
		return AccessClaims{}, err
	}

	uid, err := parsed.GetString("uid")
	if err != nil || uid == "" {
		return AccessClaims{}, ErrInvalidToken
	}
	email, err := parsed.GetString("email")
	if err != nil || email == "" {
		return AccessClaims{}, ErrInvalidToken
	}

	iss, _ := parsed.GetIssuer()
	exp, _ := parsed.GetExpiration()
	iat, _ := parsed.GetIssuedAt()

	return AccessClaims{
		UserID:    uid,
		Email:     email,
		ExpiresAt: exp,
		IssuedAt:  iat,
		Issuer:    iss,
	}, nil
}

func (m *pasetoV4PublicManager) VerifyRefresh(token string, now time.Time) (RefreshClaims, error) {
	parsed, err := m.parse(token, now, typRefresh)
	if err != nil {
		return RefreshClaims{}, err
	}

	uid, err := parsed.GetString("uid")
	if err != nil || uid == "" {
		return RefreshClaims{}, ErrInvalidToken
	}

	iss, _ := parsed.GetIssuer()
	exp, _ := parsed.GetExpiration()
	iat, _ := parsed.GetIssuedAt()

	return RefreshClaims{
		UserID:    uid,
		ExpiresAt: exp,
		IssuedAt:  iat,
		Issuer:    iss,
	}, nil
}

func (m *pasetoV4PublicManager) parse(token string, now time.Time, typ string) (*paseto.Token, error) {
	// Clock-skew tolerance:
	// Validate slightly in the future to avoid failing "nbf" when clocks differ.
	// This also makes expiration checks slightly stricter, which is typically desirable.
	validNow := now.Add(m.clockSkew)

	// Build a fresh parser per call to avoid accumulating rules across verifies.
	p := paseto.NewParser()
	p.AddRule(paseto.IssuedBy(m.issuer))
	p.AddRule(paseto.NotExpired())
	p.AddRule(paseto.ValidAt(validNow))

	parsed, err := p.ParseV4Public(m.public, token, nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	got, err := parsed.GetString("typ")
	if err != nil || got != typ {
		return nil, ErrInvalidToken
	}
	return parsed, nil
}
