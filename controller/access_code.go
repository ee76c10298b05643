package controller

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

type accessCodeResponse struct {
	UniqueGeneratedCode *string `json:"uniqueGeneratedCode"`
}

func accessCodeCORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := c.Response().Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		return next(c)
	}
}

// apiAccessCode fetches the upstream submission and passes on its
// uniqueGeneratedCode, or null when the upstream has no string code.
func (ctrl *controller) apiAccessCode(c echo.Context) error {
	logger := ctrl.requestLogger(c)
	unable := func(err error) error {
		logger.Error("error fetching access code", "error", err)
		return c.JSON(http.StatusInternalServerError, apiError("Unable to fetch access code"))
	}

	req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, ctrl.model.Config.UpstreamAccessCodeURL(), nil)
	if err != nil {
		return unable(err)
	}
	req.Header.Set("Cache-Control", "no-store")
	resp, err := ctrl.httpClient.Do(req)
	if err != nil {
		return unable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("access code upstream failed", "status", resp.StatusCode)
		return c.JSON(resp.StatusCode, apiError("Failed to fetch access code"))
	}

	var data any
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&data); err != nil {
		return unable(err)
	}
	var out accessCodeResponse
	if obj, ok := data.(map[string]any); ok {
		if code, ok := obj["uniqueGeneratedCode"].(string); ok {
			out.UniqueGeneratedCode = &code
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (ctrl *controller) apiAccessCodeOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, struct{}{})
}
