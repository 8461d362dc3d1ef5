// Package parser turns chat export text into typed message records.
package parser

import (
	"strconv"
	"time"
)

// GroupNotification is the sender assigned to lines with no "name: " prefix,
// such as join/leave notices, missed calls and encryption banners.
const GroupNotification = "group_notification"

// Columns lists the tabular keys a MessageRecord exposes, in display order.
var Columns = []string{
	"user", "message", "year", "month", "month_num", "day",
	"day_name", "hour", "minute", "date", "period",
}

// ParsedTimestamp is a message time plus the calendar fields derived from it.
type ParsedTimestamp struct {
	// Time is the parsed timestamp. Exports carry no zone, so it is UTC.
	Time time.Time `json:"message_date"`

	Year     int    `json:"year"`
	Month    string `json:"month"`     // English month name
	MonthNum int    `json:"month_num"` // 1-12
	Day      int    `json:"day"`
	DayName  string `json:"day_name"` // English weekday name
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Date     string `json:"date"`   // YYYY-MM-DD
	Period   string `json:"period"` // Hour bucket, see PeriodLabel
}

// NewParsedTimestamp derives every calendar field from t.
func NewParsedTimestamp(t time.Time) ParsedTimestamp {
	return ParsedTimestamp{
		Time:     t,
		Year:     t.Year(),
		Month:    t.Month().String(),
		MonthNum: int(t.Month()),
		Day:      t.Day(),
		DayName:  t.Weekday().String(),
		Hour:     t.Hour(),
		Minute:   t.Minute(),
		Date:     t.Format("2006-01-02"),
		Period:   PeriodLabel(t.Hour()),
	}
}

// PeriodLabel returns the one-hour bucket label for hour: "23-00" for 23,
// "00-1" for 0, and "H-H+1" otherwise.
func PeriodLabel(hour int) string {
	switch hour {
	case 23:
		return "23-00"
	case 0:
		return "00-1"
	default:
		return strconv.Itoa(hour) + "-" + strconv.Itoa(hour+1)
	}
}

// MessageRecord is one parsed chat message.
type MessageRecord struct {
	ParsedTimestamp

	// Sender is the display name, or GroupNotification.
	Sender string `json:"user"`

	// Body is the message text, including any trailing newline.
	Body string `json:"message"`
}

// IsNotification returns true if the record has no human sender.
func (r *MessageRecord) IsNotification() bool {
	return r.Sender == GroupNotification
}

// Value returns the record field for a tabular column name.
func (r *MessageRecord) Value(column string) (any, bool) {
	switch column {
	case "user":
		return r.Sender, true
	case "message":
		return r.Body, true
	case "year":
		return r.Year, true
	case "month":
		return r.Month, true
	case "month_num":
		return r.MonthNum, true
	case "day":
		return r.Day, true
	case "day_name":
		return r.DayName, true
	case "hour":
		return r.Hour, true
	case "minute":
		return r.Minute, true
	case "date":
		return r.Date, true
	case "period":
		return r.Period, true
	default:
		return nil, false
	}
}
