// Package redirect sends form posts back to the page they came from.
package redirect

import (
	"net/http"
	"strings"
)

// ReturnField is the form field carrying the page to return to.
const ReturnField = "return"

// LocalPath returns p when it is a path on this site and "/" otherwise.
// Scheme-relative ("//host") and backslash ("/\host") forms are rejected
// because browsers resolve them to another origin.
func LocalPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	return p
}

// Back redirects a form post to the local page named in ReturnField.
func Back(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, LocalPath(r.PostFormValue(ReturnField)), http.StatusSeeOther)
}
