package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/crewplan/crewplan/internal/auth"
	"github.com/crewplan/crewplan/internal/config"
	"github.com/crewplan/crewplan/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// publicPaths can be requested without an access token.
var publicPaths = []string{
	"/api/auth/signup",
	"/api/auth/login",
	"/api/integrations/google/auth/callback",
}

func isPublic(path string) bool {
	for _, public := range publicPaths {
		if strings.HasPrefix(path, public) {
			return true
		}
	}
	return false
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Validate the bearer token and propagate the user into the context
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if isPublic(req.URL.Path) {
				next.ServeHTTP(w, req)
				return
			}

			token := auth.BearerToken(req.Header.Get("Authorization"))
			if token == "" {
				http.Error(w, "missing access token", http.StatusUnauthorized)
				return
			}

			userId, err := deps.TokenValidator.Validate(token)
			if err != nil {
				log.Debugf("token rejected: %v", err)
				http.Error(w, "invalid access token", http.StatusUnauthorized)
				return
			}

			u, err := deps.UserService.GetUser(req.Context(), userId)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					log.Debugf("user %d from token no longer exists", userId)
					http.Error(w, "user not found", http.StatusForbidden)
					return
				}
				log.Errorf("failed to get user: %v", err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}

			ctx := user.WithUser(req.Context(), u)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
