package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hugohenrick/warung-digital/internal/domain/user"
)

// Erros específicos
var (
	ErrInvalidToken  = errors.New("token inválido")
	ErrExpiredToken  = errors.New("token expirado")
	ErrRevokedToken  = errors.New("token revogado")
	ErrInvalidClaims = errors.New("claims inválidas")
	ErrMissingJWTKey = errors.New("chave secreta JWT não configurada")
)

const issuer = "warung-digital-api"

// Prazo, após a expiração, em que um token ainda pode ser renovado
const defaultRefreshGrace = 7 * 24 * time.Hour

// JWTClaims representa as claims personalizadas do token JWT
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService implementa serviços relacionados a tokens JWT
type JWTService struct {
	secretKey    []byte
	expiration   time.Duration
	refreshGrace time.Duration
	now          func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewJWTService cria uma nova instância de JWTService
func NewJWTService(secretKey string, expiration time.Duration) (*JWTService, error) {
	if secretKey == "" {
		return nil, ErrMissingJWTKey
	}
	// Duração padrão de 24 horas se não for configurado
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}

	return &JWTService{
		secretKey:    []byte(secretKey),
		expiration:   expiration,
		refreshGrace: defaultRefreshGrace,
		now:          time.Now,
		revoked:      map[string]time.Time{},
	}, nil
}

// Expiration retorna a validade dos tokens emitidos
func (s *JWTService) Expiration() time.Duration {
	return s.expiration
}

// GenerateToken gera um token JWT para o usuário
func (s *JWTService) GenerateToken(u *user.User) (string, time.Time, error) {
	claims := &JWTClaims{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  issuer,
			Subject: u.ID,
		},
	}
	return s.sign(claims)
}

// ValidateToken valida um token JWT e retorna as claims se for válido
func (s *JWTService) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims, err := s.parse(tokenString, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if s.isRevoked(claims.ID) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// RefreshToken renova um token JWT; o antigo é revogado. Tokens expirados só podem ser renovados
// dentro do prazo de carência após a expiração.
func (s *JWTService) RefreshToken(tokenString string) (string, time.Time, error) {
	claims, err := s.parse(tokenString, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", time.Time{}, err
	}
	if claims.Issuer != issuer || claims.ExpiresAt == nil {
		return "", time.Time{}, ErrInvalidClaims
	}
	if s.now().After(claims.ExpiresAt.Add(s.refreshGrace)) {
		return "", time.Time{}, ErrExpiredToken
	}
	if s.isRevoked(claims.ID) {
		return "", time.Time{}, ErrRevokedToken
	}

	s.Revoke(claims)
	return s.sign(&JWTClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  issuer,
			Subject: claims.Subject,
		},
	})
}

// Revoke invalida o token enquanto ele ainda puder ser validado ou renovado
func (s *JWTService) Revoke(claims *JWTClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	until := s.now().Add(s.expiration + s.refreshGrace)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Add(s.refreshGrace)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = until
}

func (s *JWTService) sign(claims *JWTClaims) (string, time.Time, error) {
	now := s.now()
	expirationTime := now.Add(s.expiration)

	claims.ID = uuid.New().String()
	claims.ExpiresAt = jwt.NewNumericDate(expirationTime)
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)

	// Criar o token com as claims e assinar com a chave secreta
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}

func (s *JWTService) parse(tokenString string, opts ...jwt.ParserOption) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verificar o método de assinatura
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

func (s *JWTService) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}
