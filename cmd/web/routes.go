// cmd/web/routes.go
package main

import (
	"net/http"

	"github.com/aoideee/booknotes/ui"
	"github.com/julienschmidt/httprouter"
)

// routes registers all HTTP endpoints and returns the configured router wrapped
// in the middleware chain.
//
// Middleware chain (outermost → innermost):
//
//	recoverPanic → requestID → logRequest → rateLimit → router
//
// Current endpoints:
//
//	GET    /                  – list books, ?sort=recency|rating|title
//	GET    /add               – empty creation form
//	POST   /add               – create a book
//	GET    /edit/:id          – edit form for a book
//	POST   /edit/:id          – overwrite a book
//	POST   /delete/:id        – delete a book
//	GET    /book/:id          – book detail page
//	GET    /static/*filepath  – embedded stylesheets
func (app *applicationDependencies) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	router.Handler(http.MethodGet, "/static/*filepath", http.FileServerFS(ui.Files))

	router.HandlerFunc(http.MethodGet, "/", app.listBooksHandler)
	router.HandlerFunc(http.MethodGet, "/add", app.addBookFormHandler)
	router.HandlerFunc(http.MethodPost, "/add", app.createBookHandler)
	router.HandlerFunc(http.MethodGet, "/edit/:id", app.editBookFormHandler)
	router.HandlerFunc(http.MethodPost, "/edit/:id", app.updateBookHandler)
	router.HandlerFunc(http.MethodPost, "/delete/:id", app.deleteBookHandler)
	router.HandlerFunc(http.MethodGet, "/book/:id", app.showBookHandler)

	return app.recoverPanic(app.requestID(app.logRequest(app.rateLimit(router))))
}
