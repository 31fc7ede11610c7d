package cors

import (
	"net/http"

	"github.com/rs/cors"
)

// AddCorsPolicy allows browsers to read the API, which is read only
func AddCorsPolicy(handler http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet},
		AllowCredentials: true,
		Debug:            false,
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept"},
	})

	return c.Handler(handler)
}
