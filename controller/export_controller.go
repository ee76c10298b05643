package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/billingcat/notes/model"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Notes"

// writeNotesWorkbook builds a workbook with one row per note.
func writeNotesWorkbook(notes []model.Note) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot create stream writer: %w", err)
	}
	header := []any{"ID", "Title", "Content", "Date", "Owner"}
	if err := sw.SetRow("A1", header); err != nil {
		f.Close()
		return nil, err
	}
	for i, n := range notes {
		owner := ""
		if n.Owner != nil {
			owner = *n.Owner
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, []any{n.ID, n.Title, n.Content, n.Date, owner}); err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// apiNoteExport sends the listing for ?userId= as an XLSX download.
func (ctrl *controller) apiNoteExport(c echo.Context) error {
	listing, err := ctrl.model.ListNotes(c.Request().Context(), queryPtr(c, "userId"))
	if err != nil {
		return ErrInternal(err)
	}
	f, err := writeNotesWorkbook(listing.Notes)
	if err != nil {
		return ErrInternal(err)
	}
	defer f.Close()

	filename := fmt.Sprintf("notes-%s.xlsx", time.Now().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := f.WriteTo(c.Response()); err != nil {
		ctrl.requestLogger(c).Error("cannot write export", "error", err)
	}
	return nil
}
