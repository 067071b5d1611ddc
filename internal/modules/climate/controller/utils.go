package controller

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// dateRange holds the path parameters of the temperature summary routes.
// End is empty for the open-ended route.
type dateRange struct {
	Start string `validate:"required,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

// parseDateRange validates start and end as calendar dates and checks that
// end is not before start.
func parseDateRange(start, end string) (dateRange, error) {
	q := dateRange{Start: start, End: end}
	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			field := "start"
			if fe.Field() == "End" {
				field = "end"
			}
			return dateRange{}, fmt.Errorf("invalid %s date %q (expected YYYY-MM-DD)", field, fe.Value())
		}
		return dateRange{}, err
	}
	// Both are zero-padded YYYY-MM-DD, so string order is date order.
	if q.End != "" && q.End < q.Start {
		return dateRange{}, fmt.Errorf("end date %s is before start date %s", q.End, q.Start)
	}
	return q, nil
}
