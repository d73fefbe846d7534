package record

import (
	"strconv"
	"time"

	"salon-agent/internal/utils"
)

// Sheet tabs in the remote spreadsheet. Their header rows are expected to
// exist already and are never written by this service.
const (
	SheetCalls    = "Llamadas"
	SheetBookings = "Citas"
)

// CallHeaders is the fixed column order shared by the local call log and the
// Llamadas sheet.
var CallHeaders = []string{
	"created_at_pst",
	"call_started_at",
	"call_ended_at",
	"call_duration_seconds",
	"transcript",
	"summary",
	"call_id",
}

// BookingHeaders is the fixed column order shared by the local schedule log
// and the Citas sheet.
var BookingHeaders = []string{
	"created_at_pst",
	"name",
	"purpose",
	"visit_date",
	"visit_time",
	"call_id",
}

// CallRecord is the durable record of one finished call. Written once per
// call, to both sinks.
type CallRecord struct {
	CreatedAt       time.Time
	StartedAt       time.Time
	EndedAt         time.Time
	DurationSeconds int
	Transcript      string
	Summary         string
	CallID          string
}

// Row projects the record onto CallHeaders order.
func (r CallRecord) Row() []string {
	return []string{
		utils.FormatTime(r.CreatedAt),
		utils.FormatTime(r.StartedAt),
		utils.FormatTime(r.EndedAt),
		strconv.Itoa(r.DurationSeconds),
		r.Transcript,
		r.Summary,
		r.CallID,
	}
}

// BookingRecord is the durable record of a confirmed visit. Zero or one per
// call; it shares created_at with the call record of the same call.
type BookingRecord struct {
	CreatedAt time.Time
	Name      string
	Purpose   string
	VisitDate string
	VisitTime string
	CallID    string
}

// Row projects the record onto BookingHeaders order.
func (r BookingRecord) Row() []string {
	return []string{
		utils.FormatTime(r.CreatedAt),
		r.Name,
		r.Purpose,
		r.VisitDate,
		r.VisitTime,
		r.CallID,
	}
}
