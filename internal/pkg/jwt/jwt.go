package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/domain/access"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

var ErrInvalidClaims = errors.New("token claims are missing or invalid")

type Service interface {
	GenerateAccessToken(p access.Principal) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(p access.Principal) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	features := make([]string, 0, len(p.AllowedFeatures))
	for _, f := range p.AllowedFeatures {
		features = append(features, string(f))
	}

	claims := map[string]interface{}{
		"user_id":        p.UserID,
		"email":          p.Email,
		"role":           string(p.Role),
		"institution_id": valueOrNil(p.InstitutionID),
		"officer_id":     valueOrNil(p.OfficerID),
		"features":       features,
		"type":           TokenTypeAccess,
		"exp":            expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func valueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// PrincipalFromClaims rebuilds the caller identity from verified access token claims.
func PrincipalFromClaims(claims map[string]interface{}) (access.Principal, error) {
	if t, _ := claims["type"].(string); t != TokenTypeAccess {
		return access.Principal{}, fmt.Errorf("%w: not an access token", ErrInvalidClaims)
	}

	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || !access.Role(role).IsValid() {
		return access.Principal{}, ErrInvalidClaims
	}

	p := access.Principal{
		UserID: userID,
		Role:   access.Role(role),
	}
	p.Email, _ = claims["email"].(string)
	if v, ok := claims["institution_id"].(string); ok && v != "" {
		p.InstitutionID = &v
	}
	if v, ok := claims["officer_id"].(string); ok && v != "" {
		p.OfficerID = &v
	}

	// features decode as []interface{} from JSON
	switch raw := claims["features"].(type) {
	case []interface{}:
		names := make([]string, 0, len(raw))
		for _, f := range raw {
			if s, ok := f.(string); ok {
				names = append(names, s)
			}
		}
		p.AllowedFeatures = access.ParseFeatures(names)
	case []string:
		p.AllowedFeatures = access.ParseFeatures(raw)
	}

	return p, nil
}
