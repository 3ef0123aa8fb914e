package castnet

// time.go converts the date formats accepted from users into ISO-8601

import (
	"fmt"
	"time"

	"github.com/andrewwphillips/castnet/internal/schema"
)

// US style layouts tried (in this order) before ISO-8601.  Month, day and hour may have one or two digits.
var usLayouts = []string{
	"1/2/06 15:04",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ConvertDateTime converts a date or datetime to ISO-8601 (YYYY-MM-DDTHH:MM:SS).  As well as ISO-8601
// (with or without a time and/or offset) it accepts MM/DD/YYYY, MM/DD/YYYY HH:MM and MM/DD/YY HH:MM.
// An offset is only present in the result if one was given.
func ConvertDateTime(value string) (string, error) {
	for _, layout := range usLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return schema.FormatISO(t, false), nil
		}
	}
	r, err := schema.ParseISODateTime(value)
	if err != nil {
		return "", fmt.Errorf("%w: there was an issue converting datetimes - acceptable formats are "+
			"ISO, MM/DD/YYYY, MM/DD/YYYY HH:MM and MM/DD/YY HH:MM but got %q (also verify that it is a real date)",
			err, value)
	}
	return r, nil
}
