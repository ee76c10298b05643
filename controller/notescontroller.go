package controller

import (
	"net/http"
	"strconv"

	"github.com/billingcat/notes/model"

	"github.com/labstack/echo/v4"
)

func (ctrl *controller) noteInit(e *echo.Echo) {
	g := e.Group("/ui")
	g.Use(ctrl.authMiddleware)
	g.GET("/notes", ctrl.notesView)
}

type deniedVariant struct {
	Headline string
	Banner   string
	Message  string
	Code     string
}

var deniedVariants = [model.DeniedVariants]deniedVariant{
	{
		Headline: "ACCESS DENIED",
		Banner:   "[UNAUTHORIZED ACCESS DETECTED]",
		Message:  "Security breach attempt logged. You cannot access these notes.",
		Code:     "SYS_ERR_401",
	},
	{
		Headline: "RESTRICTED AREA",
		Banner:   "[AUTH_FAIL]",
		Message:  "These notes belong to another account. Your request has been recorded.",
		Code:     "AUTH_FAIL",
	},
	{
		Headline: "INTRUSION BLOCKED",
		Banner:   "[SECURITY PROTOCOL ENGAGED]",
		Message:  "This incident has been reported to the system administrators.",
		Code:     "SEC_403",
	},
}

type notesViewQuery struct {
	Q string `form:"q"`
}

// notesView renders the notes of the requested user, or the decoy denial
// screen when the access flag is set.
func (ctrl *controller) notesView(c echo.Context) error {
	ident := c.Get("identity").(model.Session)
	logger := ctrl.requestLogger(c)

	var q notesViewQuery
	if err := ctrl.form.Decode(&q, c.QueryParams()); err != nil {
		return ErrInvalid(err, "Invalid query.")
	}
	target := queryPtr(c, "userId")
	if target == nil {
		s := strconv.FormatInt(ident.UserID, 10)
		target = &s
	}

	listing, err := ctrl.model.ListNotes(c.Request().Context(), target)
	if err != nil {
		return ErrInternal(err)
	}
	flag := listing.Wow
	if policy := ctrl.model.Config.Policy(); policy != model.PolicyReserved {
		flag = policy.Flag(target, ident.UserID)
	}

	m := ctrl.defaultResponseMap(c, "Notes")
	m["target"] = *target

	if model.Decide(flag) == model.ViewDenied {
		inc, err := model.NewIncident()
		if err != nil {
			return ErrInternal(err)
		}
		logger.Warn("notes access denied", "target", *target, "uid", ident.UserID, "log_id", inc.LogID)
		m["title"] = "Access denied"
		m["incident"] = inc
		m["variant"] = deniedVariants[inc.Variant]
		return c.Render(http.StatusOK, "denied.html", m)
	}

	notes := model.FilterNotes(listing.Notes, q.Q)
	m["notes"] = notes
	m["total"] = len(listing.Notes)
	m["query"] = q.Q
	return c.Render(http.StatusOK, "notes.html", m)
}
