package middleware

import (
	"EmotionAnalyzer/pkg/handlerUtil"
	jwtPkg "EmotionAnalyzer/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const unauthorizedMessage = "Unauthorized, access token invalid or expired"

type tokenMiddleware struct {
	secret string
}

func newTokenMiddleware(secret string) *tokenMiddleware {
	return &tokenMiddleware{secret: secret}
}

// NewTokenMiddleware requires a valid HS256 bearer token when a secret is
// configured and lets every request through otherwise.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	if m.token.secret == "" {
		return ctx.Next()
	}

	errHandler := handlerUtil.New(m.log)

	userToken, err := jwtPkg.VerifyTokenHeader(ctx, m.token.secret)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"path":      ctx.Path(),
			"client_ip": ctx.IP(),
			"error":     err.Error(),
		}).Warn("Token verification failed")
		return errHandler.HandleUnauthorized(ctx, m.GetRequestID(ctx), unauthorizedMessage)
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"error": "Invalid token claims",
		}).Warn("Token claims check")
		return errHandler.HandleUnauthorized(ctx, m.GetRequestID(ctx), unauthorizedMessage)
	}

	subject, _ := claims.GetSubject()
	ctx.Locals(jwtPkg.SubjectKey, subject)

	m.log.WithFields(logrus.Fields{
		"subject": subject,
	}).Debug("Authentication successful")
	return ctx.Next()
}
