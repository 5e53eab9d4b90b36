package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olenaliuby/social-media-api/auth"
	"github.com/olenaliuby/social-media-api/handlers"
	"github.com/olenaliuby/social-media-api/logger"
	"github.com/olenaliuby/social-media-api/monitoring"
)

type Handlers struct {
	User    *handlers.UserHandler
	Profile *handlers.ProfileHandler
	Post    *handlers.PostHandler
	Comment *handlers.CommentHandler
	System  *handlers.SystemHandler
}

// Media serves locally stored uploads. Leave Root empty when media lives elsewhere.
type Media struct {
	Root string
	URL  string
}

// SetupRoutes initializes all the application routes
// The routing logic is isolated here
func SetupRoutes(h Handlers, resolver auth.Resolver, media Media) http.Handler {
	router := mux.NewRouter()
	router.Use(logger.Middleware, monitoring.InstrumentHandler)

	// Public routes
	router.HandleFunc("/users/", h.User.RegisterHandler).Methods("POST")
	router.HandleFunc("/token/", h.User.TokenHandler).Methods("POST")
	router.HandleFunc("/token/refresh/", h.User.RefreshHandler).Methods("POST")
	router.HandleFunc("/health", h.System.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if media.Root != "" {
		router.PathPrefix(media.URL).
			Handler(http.StripPrefix(media.URL, http.FileServer(http.Dir(media.Root)))).
			Methods("GET")
	}

	api := router.NewRoute().Subrouter()
	api.Use(auth.RequireAuth(resolver))

	// Identity and tokens
	api.HandleFunc("/users/me/", h.User.MeHandler).Methods("GET")
	api.HandleFunc("/users/me/", h.User.UpdateMeHandler).Methods("PATCH", "PUT")
	api.HandleFunc("/token/blacklist/", h.User.BlacklistHandler).Methods("POST")

	// Own profile
	api.HandleFunc("/me/", h.Profile.GetMe).Methods("GET")
	api.HandleFunc("/me/", h.Profile.UpdateMe).Methods("PATCH", "PUT")
	api.HandleFunc("/me/", h.Profile.DeleteMe).Methods("DELETE")
	api.HandleFunc("/me/followers/", h.Profile.MyFollowers).Methods("GET")
	api.HandleFunc("/me/following/", h.Profile.MyFollowing).Methods("GET")

	// Profiles and follow graph
	api.HandleFunc("/profiles/", h.Profile.List).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/", h.Profile.Detail).Methods("GET")
	api.HandleFunc("/profiles/{id:[0-9]+}/follow/", h.Profile.Follow).Methods("POST")
	api.HandleFunc("/profiles/{id:[0-9]+}/unfollow/", h.Profile.Unfollow).Methods("POST")

	// Feed views before the detail route
	api.HandleFunc("/posts/my-posts/", h.Post.MyPosts).Methods("GET")
	api.HandleFunc("/posts/feed/", h.Post.Feed).Methods("GET")
	api.HandleFunc("/posts/liked/", h.Post.Liked).Methods("GET")

	// Posts
	api.HandleFunc("/posts/", h.Post.List).Methods("GET")
	api.HandleFunc("/posts/", h.Post.Create).Methods("POST")
	api.HandleFunc("/posts/{id:[0-9]+}/", h.Post.Get).Methods("GET")
	api.HandleFunc("/posts/{id:[0-9]+}/", h.Post.Update).Methods("PATCH", "PUT")
	api.HandleFunc("/posts/{id:[0-9]+}/", h.Post.Delete).Methods("DELETE")
	api.HandleFunc("/posts/{id:[0-9]+}/upload-image/", h.Post.UploadImage).Methods("POST")
	api.HandleFunc("/posts/{id:[0-9]+}/like/", h.Post.Like).Methods("POST")
	api.HandleFunc("/posts/{id:[0-9]+}/unlike/", h.Post.Unlike).Methods("POST")

	// Comments
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/", h.Comment.List).Methods("GET")
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/", h.Comment.Create).Methods("POST")
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", h.Comment.Get).Methods("GET")
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", h.Comment.Update).Methods("PATCH", "PUT")
	api.HandleFunc("/posts/{post_id:[0-9]+}/comments/{id:[0-9]+}/", h.Comment.Delete).Methods("DELETE")

	return router
}
