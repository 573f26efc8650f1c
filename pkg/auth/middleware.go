package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/adapter/api/dto"
)

// Chaves usadas no contexto do gin
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserName  = "user_name"
	ContextUserRole  = "user_role"
	ContextClaims    = "jwt_claims"
)

// CurrentUser são os dados do usuário autenticado na requisição
type CurrentUser struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// JWTAuthMiddleware cria um middleware para autenticação JWT.
// O token vem do cabeçalho Authorization ou, para EventSource, do parâmetro access_token.
func JWTAuthMiddleware(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			message := "Token inválido"
			switch err {
			case ErrExpiredToken:
				message = "Token expirado"
			case ErrRevokedToken:
				message = "Token revogado"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				http.StatusUnauthorized,
				message,
				err.Error(),
			))
			return
		}

		// Armazenar as claims no contexto
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserName, claims.Name)
		c.Set(ContextUserRole, claims.Role)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

// RoleAuthMiddleware cria um middleware para verificação de papel/função do usuário
func RoleAuthMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString(ContextUserRole)
		if userRole == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				http.StatusUnauthorized,
				"Autenticação requerida",
				"",
			))
			return
		}

		for _, r := range roles {
			if userRole == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(
			http.StatusForbidden,
			"Acesso negado",
			"Você não tem permissão para acessar este recurso",
		))
	}
}

// GetCurrentUser obtém as informações do usuário atual do contexto
func GetCurrentUser(c *gin.Context) CurrentUser {
	return CurrentUser{
		ID:    c.GetString(ContextUserID),
		Email: c.GetString(ContextUserEmail),
		Name:  c.GetString(ContextUserName),
		Role:  c.GetString(ContextUserRole),
	}
}

// GetClaims obtém as claims validadas da requisição
func GetClaims(c *gin.Context) (*JWTClaims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*JWTClaims)
	return claims, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("access_token"); token != "" {
			return token, true
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			http.StatusUnauthorized,
			"Autenticação requerida",
			"O cabeçalho Authorization não foi fornecido",
		))
		return "", false
	}

	// Verificar o formato "Bearer <token>"
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			http.StatusUnauthorized,
			"Formato de token inválido",
			"Use o formato 'Bearer <token>'",
		))
		return "", false
	}
	return tokenParts[1], true
}
