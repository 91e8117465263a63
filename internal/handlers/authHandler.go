package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"docvault/internal/api"
	"docvault/internal/auth"
)

var _authStore *auth.Store

func InitAuthHandler(store *auth.Store) {
	_authStore = store
}

// RegisterHandler godoc
// @Summary      Register a new user
// @Description  Creates a user account and returns an access token for it.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.CredentialsRequest  true  "Username and password"
// @Success      201  {object}  api.TokenResponse
// @Failure      400  {object}  api.JobResponse "Missing fields"
// @Failure      409  {object}  api.JobResponse "Username already registered"
// @Router       /auth/register [post]
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	identity, err := _authStore.CreateUser(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, auth.ErrUsernameTaken) {
		WriteErrorResponse(w, http.StatusConflict, creds.Username, "Username already registered")
		return
	}
	if err != nil {
		logRH.Error("User registration failed", "err", err)
		WriteErrorResponse(w, http.StatusBadRequest, creds.Username, "Could not register user")
		return
	}

	issueToken(w, http.StatusCreated, identity)
}

// LoginHandler godoc
// @Summary      Log in
// @Description  Verifies credentials and returns an access token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.CredentialsRequest  true  "Username and password"
// @Success      200  {object}  api.TokenResponse
// @Failure      401  {object}  api.JobResponse "Invalid credentials"
// @Router       /auth/login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	creds, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	identity, err := _authStore.Authenticate(r.Context(), creds.Username, creds.Password)
	if err != nil {
		WriteErrorResponse(w, http.StatusUnauthorized, creds.Username, "Invalid username or password")
		return
	}

	issueToken(w, http.StatusOK, identity)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (api.CredentialsRequest, bool) {
	var creds api.CredentialsRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the auth handler reader :", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" || creds.Password == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "username and password are required")
		return creds, false
	}
	return creds, true
}

func issueToken(w http.ResponseWriter, statusCode int, identity auth.Identity) {
	token, err := _authStore.CreateAccessToken(identity)
	if err != nil {
		logRH.Error("Token creation failed", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, identity.Username, "Could not create token")
		return
	}
	writeJsonResponse(w, statusCode, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
}
