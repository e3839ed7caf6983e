package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/quill-notes/internal/domain"
	"github.com/prn-tf/quill-notes/internal/service"
)

// NoteHandler handles note CRUD requests.
type NoteHandler struct {
	noteService *service.NoteService
	logger      zerolog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(noteService *service.NoteService, logger zerolog.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger.With().Str("handler", "note").Logger(),
	}
}

// RegisterRoutes registers note routes. The original API takes the note
// ID in the request body for PATCH and DELETE, so all four verbs share
// the collection path.
func (h *NoteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notes", h.handleList)
	r.Post("/notes", h.handleCreate)
	r.Patch("/notes", h.handleUpdate)
	r.Delete("/notes", h.handleDelete)
}

func (h *NoteHandler) handleList(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("list notes failed")
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// An empty collection is a successful read, not an error.
	if notes == nil {
		notes = []*domain.NoteWithOwner{}
	}
	writeJSON(w, http.StatusOK, notes)
}

type createNoteRequest struct {
	User  string `json:"user"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (h *NoteHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	_, err := h.noteService.Create(r.Context(), service.CreateNoteInput{
		UserID: req.User,
		Title:  req.Title,
		Text:   req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, domain.ErrDuplicateTitle):
			writeMessage(w, http.StatusConflict, "Duplicate note title")
		case errors.Is(err, service.ErrInvalidNoteData):
			writeMessage(w, http.StatusBadRequest, "Invalid note data received")
		default:
			h.logger.Error().Err(err).Msg("create note failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeMessage(w, http.StatusCreated, "New note created.")
}

type updateNoteRequest struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Completed *bool  `json:"completed"`
}

func (h *NoteHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	// completed must be supplied explicitly as a boolean.
	if req.Completed == nil {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	note, err := h.noteService.Update(r.Context(), service.UpdateNoteInput{
		ID:        req.ID,
		UserID:    req.User,
		Title:     req.Title,
		Text:      req.Text,
		Completed: *req.Completed,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, domain.ErrNoteNotFound):
			writeMessage(w, http.StatusBadRequest, "Note not found")
		case errors.Is(err, domain.ErrDuplicateTitle):
			writeMessage(w, http.StatusConflict, "Duplicate title")
		case errors.Is(err, service.ErrInvalidNoteData):
			writeMessage(w, http.StatusBadRequest, "Invalid note data received")
		default:
			h.logger.Error().Err(err).Msg("update note failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeMessage(w, http.StatusOK, fmt.Sprintf("%s updated", note.Title))
}

type deleteNoteRequest struct {
	ID string `json:"id"`
}

func (h *NoteHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteNoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Note ID Required")
		return
	}

	note, err := h.noteService.Delete(r.Context(), req.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingID):
			writeMessage(w, http.StatusBadRequest, "Note ID Required")
		case errors.Is(err, domain.ErrNoteNotFound):
			writeMessage(w, http.StatusBadRequest, "Note not found")
		default:
			h.logger.Error().Err(err).Msg("delete note failed")
			writeMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, fmt.Sprintf("Note %s with ID %s deleted", note.Title, note.ID))
}
