package handlers

import (
	"GoodDental/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health answers liveness checks. The server is live while collections are
// still loading; those are listed and the status reads "loading".
func Health(stores *services.Stores) gin.HandlerFunc {
	return func(c *gin.Context) {
		loading := stores.Loading()
		status := "ok"
		if len(loading) > 0 {
			status = "loading"
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "loading": loading})
	}
}
