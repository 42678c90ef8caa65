package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

// maxEntriesPerDayCell caps what a calendar day cell displays; the rest is
// an overflow count. Rendering concern only, the buckets stay complete.
const maxEntriesPerDayCell = 2

type agendaApi struct {
	engine      *timeline.Engine
	coordinator *timeline.Coordinator
	clock       core.Clock
	loc         *time.Location
	validate    *validator.Validate
}

func registerAgendaAPI(g *echo.Group, jwt echo.MiddlewareFunc, api agendaApi) {
	ag := g.Group("/agenda", jwt)

	ag.GET("", api.list)
	ag.GET("/calendar", api.calendar)
	ag.POST("/entries/:id/reminder", api.toggleReminder)
	ag.GET("/entries/:id/export", api.export)
}

// Handlers

func (api *agendaApi) list(ctx echo.Context) error {
	viewer, f, err := api.bindQuery(ctx)
	if err != nil {
		return err
	}
	f.View = timeline.ViewList

	res, err := api.engine.Load(ctx.Request().Context(), viewer, f, timeline.LoadOptions{ShowLoading: true})
	if err != nil {
		return errors.Wrap(err, "loading agenda")
	}

	resp := AgendaResponse{
		Entries:   make([]EntryResponse, 0, len(res.Entries)),
		Total:     res.Total,
		Page:      res.Page,
		PageCount: res.PageCount,
	}
	now := api.clock.Now()
	for _, entry := range res.Entries {
		resp.Entries = append(resp.Entries, EntryResponse{Entry: entry, Action: entryAction(entry, now)})
	}
	if res.Total == 0 {
		resp.EmptyMessage = timeline.EmptyMessage(viewer.Role)
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *agendaApi) calendar(ctx echo.Context) error {
	viewer, f, err := api.bindQuery(ctx)
	if err != nil {
		return err
	}
	f.View = timeline.ViewCalendar

	res, err := api.engine.Load(ctx.Request().Context(), viewer, f, timeline.LoadOptions{ShowLoading: true})
	if err != nil {
		return errors.Wrap(err, "loading agenda")
	}

	// Rebuild the anchor at midnight in the configured location so the
	// projected grid matches the range the engine fetched.
	anchor := api.clock.Now().In(api.loc)
	if !f.SelectedDate.IsZero() {
		y, m, d := f.SelectedDate.Date()
		anchor = time.Date(y, m, d, 0, 0, 0, 0, api.loc)
	}
	buckets := timeline.ProjectMonth(res.Entries, anchor, api.loc)

	resp := CalendarResponse{
		Month: anchor.Format("2006-01"),
		Days:  make([]DayCellResponse, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		cell := DayCellResponse{
			Date:    bucket.Date.Format("2006-01-02"),
			Entries: bucket.Entries,
		}
		if len(cell.Entries) > maxEntriesPerDayCell {
			cell.Overflow = len(cell.Entries) - maxEntriesPerDayCell
			cell.Entries = cell.Entries[:maxEntriesPerDayCell]
		}
		for _, entry := range bucket.Entries {
			if entry.Live() {
				cell.HasLive = true
				break
			}
		}
		resp.Days = append(resp.Days, cell)
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *agendaApi) toggleReminder(ctx echo.Context) error {
	viewer, err := getContextViewer(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context viewer")
	}

	reminded, err := api.coordinator.ToggleReminder(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "toggling reminder")
	}
	return ctx.JSON(http.StatusOK, ReminderResponse{IsReminded: reminded})
}

func (api *agendaApi) export(ctx echo.Context) error {
	if _, err := getContextViewer(ctx); err != nil {
		return errors.Wrap(err, "getting context viewer")
	}

	provider := timeline.ExportProvider(ctx.QueryParam("provider"))
	if !provider.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown export provider")
	}
	link, err := api.coordinator.ExportLink(ctx.Request().Context(), ctx.Param("id"), provider)
	if err != nil {
		return errors.Wrap(err, "building export link")
	}
	return ctx.JSON(http.StatusOK, ExportResponse{URL: link})
}

// bindQuery validates the raw query parameters and hydrates the filter.
func (api *agendaApi) bindQuery(ctx echo.Context) (timeline.Viewer, timeline.Filter, error) {
	viewer, err := getContextViewer(ctx)
	if err != nil {
		return timeline.Viewer{}, timeline.Filter{}, errors.Wrap(err, "getting context viewer")
	}

	var req AgendaQueryRequest
	if err := ctx.Bind(&req); err != nil {
		return timeline.Viewer{}, timeline.Filter{}, errors.Wrap(err, "binding to AgendaQueryRequest")
	}
	if err := req.Validate(api.validate); err != nil {
		return timeline.Viewer{}, timeline.Filter{}, err
	}
	if req.Status != "" && !timeline.StatusFilter(req.Status).Valid() {
		return timeline.Viewer{}, timeline.Filter{}, timeline.ErrInvalidFilter
	}
	return viewer, timeline.DecodeFilter(ctx.QueryParams()), nil
}

// entryAction computes the entry's call-to-action for the viewer's clock.
func entryAction(entry timeline.Entry, now time.Time) *ActionResponse {
	switch entry.Kind {
	case timeline.KindLiveSession:
		if entry.Live() {
			return &ActionResponse{Label: "Join", URL: "/live/" + entry.ID, Enabled: true}
		}
	case timeline.KindExam:
		if entry.ExamStatus != timeline.ExamPublished {
			return nil
		}
		if entry.Actionable(now) {
			return &ActionResponse{
				Label:   "Take Exam",
				URL:     fmt.Sprintf("/exams/%s/take", entry.FormID),
				Enabled: true,
			}
		}
		if w := entry.AccessWindow; w != nil && w.Closed(now) {
			return &ActionResponse{Label: "Closed"}
		}
		return &ActionResponse{Label: "Not Available Yet"}
	}
	return nil
}

type (
	AgendaQueryRequest struct {
		View   string `query:"view" json:"view" validate:"omitempty,oneof=calendar list"`
		Status string `query:"status" json:"status"`
		Query  string `query:"query" json:"query"`
		Page   int    `query:"page" json:"page" validate:"omitempty,min=1"`
		Date   string `query:"date" json:"date" validate:"omitempty,dateonly"`
	}

	ActionResponse struct {
		Label   string `json:"label"`
		URL     string `json:"url,omitempty"`
		Enabled bool   `json:"enabled"`
	}

	EntryResponse struct {
		timeline.Entry
		Action *ActionResponse `json:"action,omitempty"`
	}

	AgendaResponse struct {
		Entries      []EntryResponse `json:"entries"`
		Total        int             `json:"total"`
		Page         int             `json:"page"`
		PageCount    int             `json:"page_count"`
		EmptyMessage string          `json:"empty_message,omitempty"`
	}

	DayCellResponse struct {
		Date     string           `json:"date"`
		Entries  []timeline.Entry `json:"entries"`
		Overflow int              `json:"overflow,omitempty"`
		HasLive  bool             `json:"has_live,omitempty"`
	}

	CalendarResponse struct {
		Month string            `json:"month"`
		Days  []DayCellResponse `json:"days"`
	}

	ReminderResponse struct {
		IsReminded bool `json:"is_reminded"`
	}

	ExportResponse struct {
		URL string `json:"url"`
	}
)

func (r *AgendaQueryRequest) Validate(validate *validator.Validate) error {
	r.Query = core.CleanString(r.Query)
	return validate.Struct(r)
}
