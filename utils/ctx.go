package utils

import "github.com/gin-gonic/gin"

// CurrentUserID reads the user id placed on the context by RequireUser.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get("userId"); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
