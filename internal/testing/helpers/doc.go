// Package helpers provides request builders and response assertions for
// tests that drive the host API through its real middleware.
//
// # JWT Helpers
//
// Sign host tokens against an in-memory key:
//
//	tokens := helpers.NewJWTHelper(t)
//	auth := middleware.Auth(tokens.Service(), nil)
//	token := tokens.Token(t, "survival-1", jwt.RoleHost)
//
// # Requests
//
//	rr := helpers.NewRequest(t, http.MethodPost, "/v1/guilds").
//	    WithToken(token).
//	    AsPlayer("alice").
//	    WithBody(model.CreateGuildRequest{Name: "Builders"}).
//	    Do(mux)
//
// # Assertions
//
//	helpers.AssertStatus(t, rr, http.StatusCreated)
//	helpers.AssertProblemDetails(t, rr, http.StatusUnauthorized, model.ErrCodeUnauthorized)
//	helpers.AssertValidationError(t, rr, "name")
package helpers
