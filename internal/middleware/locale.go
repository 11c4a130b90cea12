package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/booking-api/internal/session"
	"github.com/jwalitptl/booking-api/pkg/locale"
)

const ContextLocale = "locale"

// Locale resolves the response locale: explicit ?lang= first, then the
// session's stored preference, then Accept-Language.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		var l locale.Locale
		switch {
		case c.Query("lang") != "":
			l = locale.Parse(c.Query("lang"))
		default:
			if sess, ok := session.FromContext(c.Request.Context()); ok && sess.Locale != "" {
				l = sess.Locale
			} else {
				l = locale.Parse(c.GetHeader("Accept-Language"))
			}
		}
		c.Set(ContextLocale, l)
		c.Header("Content-Language", string(l))
		c.Next()
	}
}

// LocaleFrom returns the locale picked by Locale, or the default.
func LocaleFrom(c *gin.Context) locale.Locale {
	if v, ok := c.Get(ContextLocale); ok {
		if l, ok := v.(locale.Locale); ok {
			return l
		}
	}
	return locale.Default
}
