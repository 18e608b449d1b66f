package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil || input.Username == "" || input.Email == "" || input.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username, email and password are required!")
		return
	}

	v := newValidator()
	v.checkUsername(input.Username)
	v.checkEmail(input.Email)
	v.checkPassword(input.Password)
	if v.hasErrors() {
		writeMessage(w, http.StatusBadRequest, v.message())
		return
	}

	existing, err := app.storage.getUserByUsername(input.Username)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if existing != nil {
		writeMessage(w, http.StatusBadRequest, "Username already exists!")
		return
	}
	existing, err = app.storage.getUserByEmail(input.Email)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if existing != nil {
		writeMessage(w, http.StatusBadRequest, "Email already exists!")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		app.serverError(w, err)
		return
	}

	u := &user{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}
	err = app.storage.insertUser(u)
	if err == errDuplicate {
		// lost the race against a concurrent registration
		writeMessage(w, http.StatusBadRequest, "Username already exists!")
		return
	}
	if err != nil {
		app.serverError(w, err)
		return
	}

	if app.mailer != nil {
		go app.mailer.sendWelcome(u)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully!",
		"user":    u,
	})
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil || input.Username == "" || input.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username and password are required!")
		return
	}

	u, err := app.storage.getUserByUsername(input.Username)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if u == nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials!")
		return
	}
	err = bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(input.Password))
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials!")
		return
	}

	token, err := app.auth.issueToken(u.ID)
	if err != nil {
		app.serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, getUserFromRequest(r))
}

func (app *application) getUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.storage.getUsers()
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (app *application) getUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeMessage(w, http.StatusNotFound, "User not found!")
		return
	}
	u, err := app.storage.getUserByID(id)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if u == nil {
		writeMessage(w, http.StatusNotFound, "User not found!")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
