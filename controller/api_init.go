package controller

import "github.com/labstack/echo/v4"

func (ctrl *controller) apiInit(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/notes", ctrl.apiNoteList)
	api.POST("/notes", ctrl.apiNoteCreate)
	api.PUT("/notes", ctrl.apiNoteUpdate)
	api.PUT("/notes/:id", ctrl.apiNoteUpdate)
	api.DELETE("/notes", ctrl.apiNoteDelete)
	api.DELETE("/notes/:id", ctrl.apiNoteDelete)
	api.GET("/notes/export", ctrl.apiNoteExport)

	api.GET("/access-code", ctrl.apiAccessCode, accessCodeCORS)
	api.OPTIONS("/access-code", ctrl.apiAccessCodeOptions, accessCodeCORS)
}
