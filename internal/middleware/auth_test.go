package middleware

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestJWTAuthStampsVerifiedActor(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"user_id": "user-7"}))
	// a forged attribution header must not survive the middleware
	ctx.Request.Header.Set("X-User-ID", "victim-1")

	var seenActor string
	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		seenActor = string(ctx.Request.Header.Peek("X-User-ID"))
	})
	handler(&ctx)

	assert.Equal(t, "user-7", seenActor)
}

func TestJWTAuthStripsForgedHeaderWithoutClaim(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "no-user-id-claim"}))
	ctx.Request.Header.Set("X-User-ID", "victim-1")

	var seenActor string
	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		seenActor = string(ctx.Request.Header.Peek("X-User-ID"))
	})
	handler(&ctx)

	assert.Empty(t, seenActor)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	var ctx fasthttp.RequestCtx

	called := false
	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		called = true
	})
	handler(&ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthRejectsBadSignature(t *testing.T) {
	var ctx fasthttp.RequestCtx
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "intruder"}).SignedString([]byte("wrong-secret"))
	require.NoError(t, err)
	ctx.Request.Header.Set("Authorization", "Bearer "+forged)

	called := false
	handler := JWTAuth(testSecret, zap.NewNop())(func(ctx *fasthttp.RequestCtx) {
		called = true
	})
	handler(&ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestClearActorStripsHeader(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set("X-User-ID", "spoofed")

	var seenActor string
	ClearActor(func(ctx *fasthttp.RequestCtx) {
		seenActor = string(ctx.Request.Header.Peek("X-User-ID"))
	})(&ctx)

	assert.Empty(t, seenActor)
}
