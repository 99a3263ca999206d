package user

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/crewplan/crewplan/internal/auth"
	"github.com/crewplan/crewplan/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const maxPhotoSize = 5 << 20 // 5 MiB

type UserDTO struct {
	Id          int    `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	Dept        string `json:"dept"`
	ImgUrl      string `json:"imgUrl"`
	CreatedTime string `json:"createdTime"`
}

type SignUpDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Dept     string `json:"dept"`
}

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponseDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type Handler struct {
	userService Service
	tokenIssuer *auth.TokenIssuer
}

func NewHandler(userService Service, tokenIssuer *auth.TokenIssuer) *Handler {
	return &Handler{
		userService: userService,
		tokenIssuer: tokenIssuer,
	}
}

// SignUp godoc
// @Summary Register a new user
// @Description Create a new account with email and password
// @Tags User
// @Accept json
// @Produce json
// @Param user body SignUpDTO true "Registration data"
// @Success 201 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Email already registered"
// @Router /api/auth/signup [post]
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log.Debug("Registering user")

	var signUp SignUpDTO
	if err := json.NewDecoder(r.Body).Decode(&signUp); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	if len(signUp.Email) == 0 || len(signUp.Password) == 0 {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	if len(signUp.Name) == 0 {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	createdUser, err := h.userService.Register(r.Context(), NewUser{
		Email:    signUp.Email,
		Password: signUp.Password,
		Name:     signUp.Name,
		Position: signUp.Position,
		Dept:     signUp.Dept,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email is already registered")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Tracef("Created user: %+v", createdUser)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(userToDTO(&createdUser)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Login godoc
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags User
// @Accept json
// @Produce json
// @Param credentials body LoginDTO true "Credentials"
// @Success 200 {object} LoginResponseDTO
// @Failure 401 {object} rest.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var login LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}

	authenticated, err := h.userService.Authenticate(r.Context(), login.Email, login.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	token, err := h.tokenIssuer.Issue(authenticated.Id)
	if err != nil {
		log.Errorf("failed to issue token for user %d: %v", authenticated.Id, err)
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(LoginResponseDTO{
		Token: token,
		User:  userToDTO(&authenticated),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CurrentUser godoc
// @Summary Get current user
// @Description Retrieve the currently authenticated user's information
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/user/current [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	current, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoUser) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := json.NewEncoder(w).Encode(userToDTO(&current)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetAvailableUsers godoc
// @Summary List users
// @Description List all registered users, for member selection
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Router /api/user [get]
func (h *Handler) GetAvailableUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, userToDTO(&u))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UploadPhoto godoc
// @Summary Upload profile photo
// @Tags User
// @Accept octet-stream
// @Success 204
// @Failure 400 {object} rest.ErrorResponse "Image too large or invalid"
// @Router /api/user/current/photo [put]
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := io.ReadAll(io.LimitReader(r.Body, maxPhotoSize+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(photo) == 0 || len(photo) > maxPhotoSize {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusBadRequest, "Image is empty or too large")
		return
	}

	if err := h.userService.StoreUserPhoto(r.Context(), photo); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPhoto godoc
// @Summary Get a user's profile photo
// @Tags User
// @Produce jpeg
// @Success 200
// @Failure 404 {string} string "No photo"
// @Router /api/user/{userId}/photo [get]
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	userId, err := h.photoUserId(r)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	photo, err := h.userService.GetUserPhoto(r.Context(), userId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if photo == nil {
		http.Error(w, "no photo", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := w.Write(photo); err != nil {
		log.Errorf("failed to write photo response: %v", err)
	}
}

// DeletePhoto godoc
// @Summary Delete current user's profile photo
// @Tags User
// @Success 204
// @Router /api/user/current/photo [delete]
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteUserPhoto(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// photoUserId resolves the target user for photo endpoints: the path variable
// when present, the current user otherwise.
func (h *Handler) photoUserId(r *http.Request) (int, error) {
	if raw, ok := mux.Vars(r)["userId"]; ok {
		return strconv.Atoi(raw)
	}
	return CurrentId(r.Context())
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	encodeErr := json.NewEncoder(w).Encode(rest.ErrorResponse{
		Error: message,
	})
	if encodeErr != nil {
		http.Error(w, encodeErr.Error(), http.StatusInternalServerError)
	}
}

func userToDTO(u *User) UserDTO {
	return UserDTO{
		Id:          u.Id,
		Email:       u.Email,
		Name:        u.Name,
		Position:    u.Position,
		Dept:        u.Dept,
		ImgUrl:      u.ImgUrl,
		CreatedTime: u.CreatedTime.Format(time.RFC3339),
	}
}
