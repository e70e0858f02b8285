package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in getUserID
    "strconv" // strconv converts strings to numeric types

    "github.com/go-playground/validator/v10" // validator checks request struct tags
    "github.com/labstack/echo/v4"            // echo defines request context types
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) { // begin getUserID helper
    v := c.Get("user_id") // fetch user_id from context
    switch t := v.(type) { // perform type switch on the value
    case uint64: // when already uint64
        return t, nil // return directly
    case int: // when stored as int
        return uint64(t), nil // convert to uint64
    case int64: // when stored as int64
        return uint64(t), nil // convert to uint64
    case float64: // when stored as float64
        return uint64(t), nil // convert to uint64
    case string: // when stored as string
        if n, err := strconv.ParseUint(t, 10, 64); err == nil { // parse string to uint64
            return n, nil // return parsed number
        }
    } // end type switch
    return 0, errors.New("invalid user_id in context") // return error if value is missing or invalid
}

// getRole extracts the role claim from echo.Context, defaulting to empty.
func getRole(c echo.Context) string {
    if v, ok := c.Get("role").(string); ok {
        return v
    }
    return ""
}

// pathID parses a numeric :id path parameter.  Zero and garbage are both
// rejected so repositories never see an impossible key.
func pathID(c echo.Context, name string) (uint64, bool) {
    n, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || n == 0 {
        return 0, false
    }
    return n, true
}

// queryInt parses an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
    raw := c.QueryParam(name)
    if raw == "" {
        return def
    }
    n, err := strconv.Atoi(raw)
    if err != nil || n < 1 {
        return def
    }
    return n
}

// Validator adapts go-playground/validator to echo's Validator interface
// so handlers can call c.Validate on bound request structs.
type Validator struct {
    v *validator.Validate
}

// NewValidator returns a Validator backed by a fresh validate instance.
func NewValidator() *Validator {
    return &Validator{v: validator.New()}
}

// Validate implements echo.Validator.
func (val *Validator) Validate(i interface{}) error {
    return val.v.Struct(i)
}
