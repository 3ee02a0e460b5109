package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskguard/api/transport"
	"github.com/fastygo/taskguard/domain"
	"github.com/fastygo/taskguard/pkg/httpcontext"
)

// ActorClaims is the token payload an actor is derived from. The subject is
// the user ID.
type ActorClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	OrgID string `json:"orgId"`
	jwt.RegisteredClaims
}

// JWTAuth verifies HMAC-signed bearer tokens and stores the resulting
// domain.Actor on the request. Requests without a valid token never reach next.
func JWTAuth(secret, issuer string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			actor, err := ParseActor(tokenString, secret, issuer)
			if err != nil {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}

			httpcontext.SetActor(ctx, actor)
			next(ctx)
		}
	}
}

// ParseActor validates the token signature and claims and builds the actor.
func ParseActor(tokenString, secret, issuer string) (domain.Actor, error) {
	claims := &ActorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Actor{}, err
	}
	if !token.Valid {
		return domain.Actor{}, errors.New("token not valid")
	}
	if issuer != "" && !claims.VerifyIssuer(issuer, true) {
		return domain.Actor{}, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if claims.Subject == "" || claims.OrgID == "" {
		return domain.Actor{}, errors.New("token missing subject or organization")
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{
		ID:             claims.Subject,
		Email:          claims.Email,
		Role:           role,
		OrganizationID: claims.OrgID,
	}, nil
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(http.StatusUnauthorized)
	ctx.SetBody(body)
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
