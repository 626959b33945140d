package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chronotrack/time-tracking-api/internal/database"
	"github.com/chronotrack/time-tracking-api/internal/models"
)

// ContextKeyTimeEntry is the gin context key under which the resolved
// entry is stored for downstream handlers.
const ContextKeyTimeEntry = "time_entry"

// RequireTimeEntry resolves the {id} route parameter to an existing time
// entry and stores it in the context. Ownership checks happen in the
// service layer so non-owners get a 403 rather than a 404.
func RequireTimeEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		entryIDStr := c.Param("id")
		entryID, err := strconv.ParseUint(entryIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid time entry ID",
			})
			c.Abort()
			return
		}

		var entry models.TimeEntry
		if err := database.GetDB().
			Preload("Task").
			Preload("Team").
			Preload("CustomFieldValues").
			Preload("CustomFieldValues.Definition").
			First(&entry, entryID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Time entry not found",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyTimeEntry, entry)
		c.Next()
	}
}

// GetTimeEntry retrieves the resolved entry from the context
func GetTimeEntry(c *gin.Context) (models.TimeEntry, bool) {
	entryInterface, exists := c.Get(ContextKeyTimeEntry)
	if !exists {
		return models.TimeEntry{}, false
	}

	entry, ok := entryInterface.(models.TimeEntry)
	return entry, ok
}
