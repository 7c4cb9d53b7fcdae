package middlewares

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bit2424/LunchLog/entity"
)

// RequireUser resolves the caller from the X-User-ID header set by the upstream
// auth gateway. Session mechanics live outside this service; the id is still
// checked against the users table so handlers always see a real user.
func RequireUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("X-User-ID")
		if h == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing X-User-ID"})
			c.Abort()
			return
		}
		id, err := strconv.ParseUint(h, 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid X-User-ID"})
			c.Abort()
			return
		}

		var user entity.User
		if err := db.Select("id").First(&user, uint(id)).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unknown user"})
			c.Abort()
			return
		}

		c.Set("userId", user.ID)
		c.Next()
	}
}
