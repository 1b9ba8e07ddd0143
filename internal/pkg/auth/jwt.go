package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	jwtSecret       []byte
	accessTokenTTL  = 2 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// InitJWT 设置签名密钥与有效期，ttl 为 0 时保留默认值
func InitJWT(secret string, accessTTL, refreshTTL time.Duration) {
	jwtSecret = []byte(secret)
	if accessTTL > 0 {
		accessTokenTTL = accessTTL
	}
	if refreshTTL > 0 {
		refreshTokenTTL = refreshTTL
	}
}

// TokenType 区分访问令牌和刷新令牌，防止互相冒用
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("wrong token type")
)

type Claims struct {
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Roles    []string  `json:"roles,omitempty"`
	Type     TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Token 签发结果
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// GenerateAccessToken 生成访问令牌
func GenerateAccessToken(userID uint, username string, roles []string) (Token, error) {
	return sign(Claims{UserID: userID, Username: username, Roles: roles, Type: AccessToken}, accessTokenTTL)
}

// GenerateRefreshToken 生成刷新令牌，ID 需要落库以便吊销
func GenerateRefreshToken(userID uint, username string) (Token, error) {
	return sign(Claims{UserID: userID, Username: username, Type: RefreshToken}, refreshTokenTTL)
}

func sign(claims Claims, ttl time.Duration) (Token, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   fmt.Sprint(claims.UserID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: s, ID: claims.ID, ExpiresAt: exp}, nil
}

// ParseToken 校验签名与有效期，并要求令牌类型为 want
func ParseToken(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != want {
		return nil, ErrWrongType
	}
	return claims, nil
}
