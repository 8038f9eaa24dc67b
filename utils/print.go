package utils

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/zenterm/zenbus/json"
)

// PrintJSON writes v to w as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// PrintRoutes lists every route registered on r.
func PrintRoutes(w io.Writer, r chi.Routes) error {
	fmt.Fprintln(w, "=== Registered Routes ===")
	walkFunc := func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		_, err := fmt.Fprintf(w, "%-6s %s\n", method, strings.ReplaceAll(route, "/*/", "/"))
		return err
	}
	return chi.Walk(r, walkFunc)
}
