package health

import (
	"time"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// Return status of the API along with its uptime
func getStatus(c *gin.Context) {
	res := api_types.NewSuccessResponse("OK", gin.H{
		"uptime": time.Since(startedAt).Round(time.Second).String(),
	})
	c.JSON(res.AsGinResponse())
}
