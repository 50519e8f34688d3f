package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claim names and values carried alongside the registered claims.
const (
	ClaimType     = "typ"
	ClaimPurpose  = "purpose"
	ClaimVerified = "verified"

	TokenTypeSession         = "session"
	PurposeEmailVerification = "email_verification"
)

// Clock returns the current time.
type Clock func() time.Time

type TokenConfig struct {
	Secret   string
	Validity time.Duration
	Issuer   string
}

// Claims is the parsed payload of a signed token.
type Claims struct {
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

func (c *Claims) Type() string {
	s, _ := c.Extra[ClaimType].(string)
	return s
}

func (c *Claims) Purpose() string {
	s, _ := c.Extra[ClaimPurpose].(string)
	return s
}

func (c *Claims) Verified() bool {
	b, _ := c.Extra[ClaimVerified].(bool)
	return b
}

type JWTService struct {
	secret   []byte
	validity time.Duration
	issuer   string
	now      Clock
}

func NewJWTService(cfg TokenConfig, clock Clock) *JWTService {
	if clock == nil {
		clock = time.Now
	}
	return &JWTService{
		secret:   []byte(cfg.Secret),
		validity: cfg.Validity,
		issuer:   cfg.Issuer,
		now:      clock,
	}
}

// Issue signs a token for subject. Registered claims override any of the same
// name in claims.
func (s *JWTService) Issue(subject string, claims map[string]any) (string, time.Time, error) {
	now := s.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(s.validity))

	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["sub"] = subject
	mc["iat"] = issuedAt
	mc["exp"] = expiresAt
	if s.issuer != "" {
		mc["iss"] = s.issuer
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, mc).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt.Time, nil
}

// IssueSession issues a bearer token for the API.
func (s *JWTService) IssueSession(email string, verified bool) (string, time.Time, error) {
	return s.Issue(email, map[string]any{
		ClaimType:     TokenTypeSession,
		ClaimVerified: verified,
	})
}

// IssueVerification issues a token that can only be used to confirm an email address.
func (s *JWTService) IssueVerification(email string) (string, error) {
	token, _, err := s.Issue(email, map[string]any{ClaimPurpose: PurposeEmailVerification})
	return token, err
}

// Parse checks the signature and structure of a token. It does not check expiry.
func (s *JWTService) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, err := mc.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		Subject:   sub,
		ExpiresAt: exp.Time,
		Extra:     make(map[string]any),
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if iss, err := mc.GetIssuer(); err == nil {
		claims.Issuer = iss
	}
	for k, v := range mc {
		switch k {
		case "sub", "exp", "iat", "iss", "nbf", "aud", "jti":
		default:
			claims.Extra[k] = v
		}
	}

	return claims, nil
}

// IsExpired is fail-closed: unparseable tokens count as expired.
func (s *JWTService) IsExpired(tokenString string) bool {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return true
	}
	return s.expired(claims)
}

func (s *JWTService) IsValid(tokenString string) bool {
	return !s.IsExpired(tokenString)
}

// SubjectIfValid returns the subject only for a valid, unexpired token.
func (s *JWTService) SubjectIfValid(tokenString string) (string, bool) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

func (s *JWTService) Validate(tokenString, expectedSubject string) bool {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return false
	}
	return claims.Subject == expectedSubject
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims, err := s.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if s.expired(claims) {
		return nil, ErrExpiredToken
	}
	return claims, nil
}

func (s *JWTService) expired(c *Claims) bool {
	return !s.now().Before(c.ExpiresAt)
}
