package flags_module

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the flag endpoints on the given router
func RegisterRoutes(g gin.IRouter, service *FlagService) {
	RegisterValidators()

	ctl := NewController(service)

	group := g.Group("/flags")
	group.GET("", ctl.ListFlags)              // List flags matching the query filters
	group.POST("", ctl.CreateFlag)            // Create a new flag
	group.GET("/:id", ctl.GetFlag)            // Get a flag by id
	group.PATCH("/:id", ctl.UpdateFlag)       // Update any subset of a flag's mutable fields
	group.DELETE("/:id", ctl.DeleteFlag)      // Delete a flag
	group.POST("/:id/toggle", ctl.ToggleFlag) // Flip a flag's enabled state
}
