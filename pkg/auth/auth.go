package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/arnavshah/shift-relay-go/pkg/models"
	"github.com/arnavshah/shift-relay-go/pkg/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotMaster          = errors.New("master role required")
)

var jwtAlgorithm = jwt.SigningMethodHS256

// TokenTTL is how long a master token stays valid
const TokenTTL = 24 * time.Hour

// Claims represents the JWT claims
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// EmployeeLookup is the part of the store needed to check credentials
type EmployeeLookup interface {
	GetEmployee(ctx context.Context, name string) (models.Employee, error)
}

// Authenticate checks a name/password pair against the store. Unknown
// names and wrong passwords both yield ErrInvalidCredentials.
func Authenticate(ctx context.Context, s EmployeeLookup, name, password string) (models.Employee, error) {
	e, err := s.GetEmployee(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Employee{}, ErrInvalidCredentials
		}
		return models.Employee{}, fmt.Errorf("failed to look up employee: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(e.Password), []byte(password)) != 1 {
		return models.Employee{}, ErrInvalidCredentials
	}
	return e, nil
}

// Signer issues and verifies master tokens
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a Signer for the given HMAC secret
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// CreateToken creates a new JWT token for an employee
func (s *Signer) CreateToken(e models.Employee) (string, error) {
	now := s.now()
	claims := &Claims{
		Username: e.Name,
		Role:     e.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.secret)
}

// VerifyToken verifies a JWT token
func (s *Signer) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyMaster verifies a token and requires the master role
func (s *Signer) VerifyMaster(tokenString string) (*Claims, error) {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Role != models.RoleMaster {
		return nil, ErrNotMaster
	}
	return claims, nil
}
