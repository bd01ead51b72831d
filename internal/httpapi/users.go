package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	"musicshare/internal/app/users"
	"musicshare/internal/auth"
	"musicshare/internal/store"
)

type meResponse struct {
	ID    uuid.UUID  `json:"id"`
	Email string     `json:"email"`
	Kind  auth.Kind  `json:"kind"`
	Role  store.Role `json:"role"`
}

type roleRequest struct {
	Role store.Role `json:"role"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := caller(r)
	if id.Kind == auth.KindAdmin {
		writeJSON(w, http.StatusOK, meResponse{ID: id.ID, Email: id.Email, Kind: id.Kind, Role: store.RoleAdmin})
		return
	}

	user, err := s.users.Get(r.Context(), id.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req users.Update
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Update(r.Context(), caller(r), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Delete(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.admins.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := s.admins.Create(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.admins.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.admins.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.admins.UpdateUserRole(r.Context(), id, req.Role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", store.ErrUserNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.admins.DeleteUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
