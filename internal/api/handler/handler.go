package handler

import "github.com/mdavis72884/bramble-claude-sub001/internal/service"

// Handler aggregates every HTTP handler
type Handler struct {
	Schedule *ScheduleHandler
	Series   *SeriesHandler
	Export   *ExportHandler
	Draft    *DraftHandler
}

// NewHandler creates the Handler aggregate
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Schedule: NewScheduleHandler(svc.Schedule),
		Series:   NewSeriesHandler(svc.Series),
		Export:   NewExportHandler(svc.Export),
		Draft:    NewDraftHandler(svc.Draft),
	}
}
