package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter registers every route on a fresh gin engine
func NewRouter(tasks *TaskHandler, runs *RunsHandler, logger logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.GET("/health", runs.Health)
	r.POST("/student-task", tasks.ReceiveTask)

	api := r.Group("/api")
	{
		api.POST("/tasks", tasks.ReceiveTask)

		runGroup := api.Group("/runs")
		{
			runGroup.GET("", runs.ListRuns)
			runGroup.GET("/:id", runs.GetRun)
		}
	}

	return r
}

// requestLogger logs one line per request. Bodies are never logged since they carry the secret.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}).Debug("HTTP request")
	}
}
