package pipeline

import (
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_=-]+\.[A-Za-z0-9_=-]+\.?[A-Za-z0-9_.+/=-]*$`)

// LooksLikeToken reports whether the whole message is a bare credential.
func LooksLikeToken(text string) bool {
	return tokenPattern.MatchString(strings.TrimSpace(text))
}

// tokenExpired 只解析不验签；不是 JWT 或没有 exp 时交给 Domain API 判断
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
