package main

import (
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stegocodec/handlers"
)

func main() {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = corsOrigins(os.Getenv("STEGO_CORS_ORIGIN"))
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	config.ExposeHeaders = []string{"X-Stego-Request-Id", "X-Stego-Container", "X-Stego-Fragment-Count", "Content-Disposition"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	stegoHandler := handlers.NewStegoHandler()

	api := router.Group("/api/v1")
	{
		api.GET("/health", stegoHandler.HealthCheck)

		stego := api.Group("/stego")
		{
			stego.POST("/capacity", stegoHandler.Capacity)
			stego.POST("/insert", stegoHandler.Insert)
			stego.POST("/extract", stegoHandler.Extract)
			stego.POST("/insert-fragmented", stegoHandler.InsertFragmented)
			stego.POST("/extract-fragmented", stegoHandler.ExtractFragmented)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Printf("API endpoints:")
	log.Printf("  POST /api/v1/stego/capacity           - Check whether a cover file can hold a payload")
	log.Printf("  POST /api/v1/stego/insert              - Embed a secret file into a single cover file")
	log.Printf("  POST /api/v1/stego/extract             - Recover a secret file from a single stego file")
	log.Printf("  POST /api/v1/stego/insert-fragmented   - Split a secret file across several cover files")
	log.Printf("  POST /api/v1/stego/extract-fragmented  - Recombine a secret file from several stego files")
	log.Printf("  GET  /api/v1/health                    - Health check")

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsOrigins parses STEGO_CORS_ORIGIN as a comma-separated allow-list,
// falling back to the teacher's localhost:3000 default when unset.
func corsOrigins(env string) []string {
	if env == "" {
		return []string{"http://localhost:3000"}
	}
	parts := strings.Split(env, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
