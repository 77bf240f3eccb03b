package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/huddlehq/huddle/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Principal is the identity a project token resolves to. Every authenticated
// request acts as one member of one project.
type Principal struct {
	ProjectID string
	MemberID  string
	Name      string
	Role      string
}

// IsManager reports whether the principal may perform team-lead operations.
func (p *Principal) IsManager() bool {
	return p.Role == model.RoleTeamLead
}

type AuthService struct {
	jwtSecret []byte
	issuer    string
	ttl       time.Duration
}

func NewAuthService(jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		issuer:    "huddle",
		ttl:       ttl,
	}
}

// IssueToken creates a signed project token for the given member.
func (s *AuthService) IssueToken(projectID string, m *model.Member) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		ProjectID: projectID,
		MemberID:  m.ID,
		Name:      m.Name,
		Role:      m.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a bearer token and returns the principal it encodes.
func (s *AuthService) ValidateToken(tokenStr string) (*Principal, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid || claims.ProjectID == "" || claims.MemberID == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{
		ProjectID: claims.ProjectID,
		MemberID:  claims.MemberID,
		Name:      claims.Name,
		Role:      claims.Role,
	}, nil
}

type tokenClaims struct {
	ProjectID string `json:"project_id"`
	MemberID  string `json:"member_id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}
