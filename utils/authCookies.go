package utils

import (
	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies stores both tokens as http-only cookies.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	setCookie(c, AccessTokenCookie, accessToken, int(AccessTokenExpiry.Seconds()))
	setCookie(c, RefreshTokenCookie, refreshToken, int(RefreshTokenExpiry.Seconds()))
}

func ClearAuthCookies(c *gin.Context) {
	setCookie(c, AccessTokenCookie, "", -1)
	setCookie(c, RefreshTokenCookie, "", -1)
}

func setCookie(c *gin.Context, name, value string, maxAge int) {
	// plain http is only accepted in debug mode for local dev
	secure := gin.Mode() != gin.DebugMode
	c.SetCookie(name, value, maxAge, "/", "", secure, true)
}
