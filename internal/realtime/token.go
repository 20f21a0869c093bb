package realtime

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hirehub/backend/internal/apperr"
)

// AgentIdentity is the reserved identity the interview agent joins rooms
// with. Protocol calls are addressed to it.
const AgentIdentity = "interview-agent"

// VideoGrant mirrors the room-join grant embedded in an access token.
type VideoGrant struct {
	RoomJoin       bool   `json:"roomJoin"`
	Room           string `json:"room"`
	CanPublish     bool   `json:"canPublish"`
	CanSubscribe   bool   `json:"canSubscribe"`
	CanPublishData bool   `json:"canPublishData"`
}

type tokenClaims struct {
	Name  string     `json:"name,omitempty"`
	Video VideoGrant `json:"video"`
	jwt.RegisteredClaims
}

// TokenService mints and validates room access tokens. Identity travels in
// the JWT subject, the room in the video grant.
type TokenService interface {
	Mint(room, identity, name string) (string, error)
	Validate(token, room string) (identity string, err error)
}

type tokenService struct {
	apiKey string
	secret []byte
	ttl    time.Duration
}

func NewTokenService(apiKey, secret string, ttl time.Duration) TokenService {
	return &tokenService{
		apiKey: apiKey,
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Mint implements TokenService.
func (s *tokenService) Mint(room, identity, name string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Name: name,
		Video: VideoGrant{
			RoomJoin:       true,
			Room:           room,
			CanPublish:     true,
			CanSubscribe:   true,
			CanPublishData: true,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.apiKey,
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Validate implements TokenService.
func (s *tokenService) Validate(tokenStr, room string) (string, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", apperr.Validation("invalid access token")
	}

	if !claims.Video.RoomJoin || claims.Video.Room != room {
		return "", apperr.Validation("token not valid for room %s", room)
	}
	if claims.Subject == "" {
		return "", apperr.Validation("token missing identity")
	}

	return claims.Subject, nil
}
