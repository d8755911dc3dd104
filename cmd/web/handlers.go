// cmd/web/handlers.go
// This file contains all HTTP request handlers for the books resource.
// Each handler is a method on *applicationDependencies so it has access
// to the logger, templates and database models.
package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/aoideee/booknotes/internal/data"
	"github.com/aoideee/booknotes/internal/validator"
)

// bookForm carries the raw form values for the add and edit pages.
type bookForm struct {
	Title    string
	Author   string
	ISBN     string
	Rating   string
	Notes    string
	DateRead string
	validator.Validator
}

// newBookForm reads a bookForm from an already parsed request body.
func newBookForm(r *http.Request) bookForm {
	return bookForm{
		Title:     strings.TrimSpace(r.PostForm.Get("title")),
		Author:    strings.TrimSpace(r.PostForm.Get("author")),
		ISBN:      strings.TrimSpace(r.PostForm.Get("isbn")),
		Rating:    strings.TrimSpace(r.PostForm.Get("rating")),
		Notes:     r.PostForm.Get("notes"),
		DateRead:  strings.TrimSpace(r.PostForm.Get("date_read")),
		Validator: *validator.New(),
	}
}

// formFromBook pre-fills the edit page, with date_read as YYYY-MM-DD.
func formFromBook(b *data.Book) bookForm {
	f := bookForm{
		Title:    b.Title,
		Author:   b.Author,
		DateRead: b.DateReadValue(),
	}
	if b.ISBN != nil {
		f.ISBN = *b.ISBN
	}
	if b.Rating != nil {
		f.Rating = strconv.FormatFloat(*b.Rating, 'f', -1, 64)
	}
	if b.Notes != nil {
		f.Notes = *b.Notes
	}
	return f
}

func (f *bookForm) validate() {
	f.Check(validator.NotBlank(f.Title) && validator.NotBlank(f.Author), "title", "Title and author are required")
	f.Check(validator.OptionalNumber(f.Rating), "rating", "Rating must be a number")
	f.Check(validator.OptionalDate(f.DateRead), "date_read", "Date read must be a YYYY-MM-DD date")
}

// book converts a validated form into a Book with the given id.
func (f bookForm) book(id int64) *data.Book {
	return &data.Book{
		ID:       id,
		Title:    f.Title,
		Author:   f.Author,
		ISBN:     optionalString(f.ISBN),
		Rating:   optionalFloat(f.Rating),
		Notes:    optionalString(f.Notes),
		DateRead: optionalDate(f.DateRead),
	}
}

// listBooksHandler handles GET /.
// It reads the sort query parameter, lists every book in that order and
// renders them with their cover images.
func (app *applicationDependencies) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	sort := data.ParseSortMode(app.readString(r.URL.Query(), "sort", string(data.SortRecency)))

	books, err := app.models.Books.List(r.Context(), sort)
	if err != nil {
		app.serverErrorResponse(w, r, err, "Error loading books from database")
		return
	}

	for _, b := range books {
		b.AttachCoverURL()
	}

	td := app.newTemplateData(r)
	td.Books = books
	td.CurrentSort = sort
	app.render(w, r, http.StatusOK, "home.tmpl", td)
}

// addBookFormHandler handles GET /add.
func (app *applicationDependencies) addBookFormHandler(w http.ResponseWriter, r *http.Request) {
	td := app.newTemplateData(r)
	td.FormAction = "/add"
	app.render(w, r, http.StatusOK, "add.tmpl", td)
}

// createBookHandler handles POST /add.
// Title and author are required; everything else may be left blank.
func (app *applicationDependencies) createBookHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.readForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	form := newBookForm(r)
	if form.validate(); !form.Valid() {
		app.failedValidationResponse(w, r, form.Errors)
		return
	}

	if err := app.models.Books.Insert(r.Context(), form.book(0)); err != nil {
		app.serverErrorResponse(w, r, err, "Error adding book to database")
		return
	}

	app.redirectHome(w, r)
}

// editBookFormHandler handles GET /edit/:id.
func (app *applicationDependencies) editBookFormHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := app.lookupBook(w, r)
	if !ok {
		return
	}

	td := app.newTemplateData(r)
	td.Book = book
	td.Form = formFromBook(book)
	td.FormAction = fmt.Sprintf("/edit/%d", book.ID)
	app.render(w, r, http.StatusOK, "edit.tmpl", td)
}

// updateBookHandler handles POST /edit/:id.
// Every column is overwritten with the submitted values. An id with no
// matching book, malformed ids included, is silently ignored.
func (app *applicationDependencies) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.readForm(w, r); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	form := newBookForm(r)
	if form.validate(); !form.Valid() {
		app.failedValidationResponse(w, r, form.Errors)
		return
	}

	id, err := app.readIDParam(r)
	if err != nil {
		app.redirectHome(w, r)
		return
	}

	if err := app.models.Books.Update(r.Context(), form.book(id)); err != nil {
		app.serverErrorResponse(w, r, err, "Error updating book in database")
		return
	}

	app.redirectHome(w, r)
}

// deleteBookHandler handles POST /delete/:id.
// It always redirects home; deleting a missing book is not an error.
func (app *applicationDependencies) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.redirectHome(w, r)
		return
	}

	if err := app.models.Books.Delete(r.Context(), id); err != nil {
		app.serverErrorResponse(w, r, err, "Error deleting book from database")
		return
	}

	app.redirectHome(w, r)
}

// showBookHandler handles GET /book/:id.
func (app *applicationDependencies) showBookHandler(w http.ResponseWriter, r *http.Request) {
	book, ok := app.lookupBook(w, r)
	if !ok {
		return
	}

	book.AttachCoverURL()

	td := app.newTemplateData(r)
	td.Book = book
	app.render(w, r, http.StatusOK, "book.tmpl", td)
}

// lookupBook fetches the book named by the :id parameter. When it returns
// false the error response has already been written.
func (app *applicationDependencies) lookupBook(w http.ResponseWriter, r *http.Request) (*data.Book, bool) {
	id, err := app.readIDParam(r)
	if err != nil {
		app.bookNotFoundResponse(w, r)
		return nil, false
	}

	book, err := app.models.Books.Get(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.bookNotFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err, "Error loading book from database")
		}
		return nil, false
	}

	return book, true
}
