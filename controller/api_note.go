package controller

import (
	"errors"
	"net/http"

	"github.com/billingcat/notes/model"

	"github.com/labstack/echo/v4"
)

type deleteNoteRequest struct {
	ID *int64 `json:"id"`
}

type deleteNoteResponse struct {
	DeletedID int64 `json:"deletedId"`
}

// apiNoteList returns the listing for ?userId=. Without the parameter every
// note is returned.
func (ctrl *controller) apiNoteList(c echo.Context) error {
	listing, err := ctrl.model.ListNotes(c.Request().Context(), queryPtr(c, "userId"))
	if err != nil {
		return ErrInternal(err)
	}
	return c.JSON(http.StatusOK, listing)
}

func (ctrl *controller) apiNoteCreate(c echo.Context) error {
	var n model.Note
	if err := decodeJSON(c, &n); err != nil {
		return ErrInvalid(err, "Invalid note.")
	}
	saved, err := ctrl.model.CreateNote(c.Request().Context(), n)
	if err != nil {
		return ErrInternal(err)
	}
	ctrl.requestLogger(c).Debug("note created", "id", saved.ID)
	return c.JSON(http.StatusOK, saved)
}

// apiNoteUpdate replaces every note with the body's id. On /api/notes/:id the
// path id is used when the body has none.
func (ctrl *controller) apiNoteUpdate(c echo.Context) error {
	var n model.Note
	if err := decodeJSON(c, &n); err != nil {
		return ErrInvalid(err, "Invalid note.")
	}
	if id, ok := pathID(c); ok && n.ID == 0 {
		n.ID = id
	}
	saved, err := ctrl.model.UpdateNote(c.Request().Context(), n)
	if err != nil {
		return ErrInternal(err)
	}
	return c.JSON(http.StatusOK, saved)
}

func (ctrl *controller) apiNoteDelete(c echo.Context) error {
	var req deleteNoteRequest
	err := decodeJSON(c, &req)
	if err != nil && !errors.Is(err, errEmptyBody) {
		return ErrInvalid(err, "Invalid request.")
	}
	hasBody := err == nil
	if req.ID == nil {
		id, ok := pathID(c)
		if !ok {
			if hasBody {
				// a JSON object without id deletes nothing
				return c.JSON(http.StatusOK, struct{}{})
			}
			return ErrInvalid(errors.New("delete without id"), "Invalid request.")
		}
		req.ID = &id
	}
	id, err := ctrl.model.DeleteNote(c.Request().Context(), *req.ID)
	if err != nil {
		return ErrInternal(err)
	}
	return c.JSON(http.StatusOK, deleteNoteResponse{DeletedID: id})
}
