package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	// handle labels request metrics with the route pattern rather than the raw path
	handle := func(method, pattern string, h http.HandlerFunc) {
		router.Handler(method, pattern, app.instrument(pattern, h))
	}

	handle(http.MethodGet, "/api/healthcheck", app.healthCheckHandler)

	// auth gate
	handle(http.MethodPost, "/api/auth/login", app.loginHandler)
	handle(http.MethodGet, "/api/auth/verify", app.verifyHandler)
	handle(http.MethodPost, "/api/auth/logout", app.logoutHandler)

	// blog service
	handle(http.MethodGet, "/api/blogs", app.listBlogsHandler)
	handle(http.MethodGet, "/api/blogs/:slug", app.getBlogHandler)
	handle(http.MethodPost, "/api/blogs", app.requireAdmin(app.createBlogHandler))
	handle(http.MethodPut, "/api/blogs/:id", app.requireAdmin(app.updateBlogHandler))
	handle(http.MethodDelete, "/api/blogs/:id", app.requireAdmin(app.deleteBlogHandler))

	// photo service
	handle(http.MethodGet, "/api/photos", app.listPhotosHandler)
	handle(http.MethodGet, "/api/photos/upload-credential", app.requireAdmin(app.uploadCredentialHandler))
	handle(http.MethodPost, "/api/photos", app.requireAdmin(app.createPhotoHandler))
	handle(http.MethodPut, "/api/photos", app.requireAdmin(app.updatePhotoHandler))
	handle(http.MethodDelete, "/api/photos", app.requireAdmin(app.deletePhotoHandler))

	// contact service
	handle(http.MethodPost, "/api/contact", app.contactHandler)

	router.Handler(http.MethodGet, "/metrics", app.metrics.handler())

	return app.recoverPanic(app.requestID(app.logRequest(router)))
}
