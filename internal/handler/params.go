package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// pathInt binds the integer path parameter name. On failure it writes a 400
// and reports false.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	var v int
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid path parameter "+name+": "+err.Error()))
		return 0, false
	}
	return v, true
}

// pathString binds a required string path parameter.
func pathString(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid path parameter "+name+": "+err.Error()))
		return "", false
	}
	return v, true
}

// queryOptional binds an optional form-style query parameter into dst, a
// pointer to a pointer. dst is left nil when the parameter is absent.
func queryOptional(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		writeJSON(w, http.StatusBadRequest, requestBody("invalid query parameter "+name+": "+err.Error()))
		return false
	}
	return true
}
