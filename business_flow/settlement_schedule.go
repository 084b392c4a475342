package businessflow

import (
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sellerpulse/recon-api/models"
)

// ExpectedSettlementDate computes the date a marketplace is expected to pay
// out for an order dispatched on ref, under the card's settlement basis.
// Grace days are added uniformly as whole calendar days after the basis date
// is fixed, so for every basis:
//
//	schedule(ref, grace=g) == schedule(ref, grace=0) + g days
//
// A basis configuration validated at card-creation time is structurally
// complete, so there are no error states.
func ExpectedSettlementDate(card *models.RateCard, ref civil.Date) civil.Date {
	var base civil.Date

	switch card.SettlementBasis {
	case models.SettlementBasisWeekly:
		base = nextOnOrAfterWeekday(ref, weekdayParam(card.WeeklyWeekday))

	case models.SettlementBasisBiWeekly:
		base = biWeeklyOccurrence(ref, weekdayParam(card.BiWeeklyWeekday), card.BiWeeklyWhich)

	case models.SettlementBasisMonthly:
		base = monthlyOccurrence(ref, card.MonthlyDay)

	default: // t_plus
		days := 0
		if card.TPlusDays != nil {
			days = *card.TPlusDays
		}
		base = ref.AddDays(days)
	}

	return base.AddDays(card.GraceDays)
}

func weekdayParam(p *int) time.Weekday {
	if p == nil {
		return time.Sunday
	}
	return time.Weekday(*p % 7)
}

func weekdayOf(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

// nextOnOrAfterWeekday finds the next date on or after d whose weekday is w.
// When d itself matches, d is used rather than the following week.
func nextOnOrAfterWeekday(d civil.Date, w time.Weekday) civil.Date {
	delta := (int(w) - int(weekdayOf(d)) + 7) % 7
	return d.AddDays(delta)
}

// biWeeklyOccurrence finds the first or second occurrence of w within the
// month containing ref; if that occurrence has already passed, the same
// occurrence in the following month is used.
func biWeeklyOccurrence(ref civil.Date, w time.Weekday, which *string) civil.Date {
	n := 1
	if which != nil && *which == models.BiWeeklySecond {
		n = 2
	}

	occ := nthWeekdayOfMonth(ref.Year, ref.Month, w, n)
	if occ.Before(ref) {
		year, month := nextMonth(ref.Year, ref.Month)
		occ = nthWeekdayOfMonth(year, month, w, n)
	}
	return occ
}

// monthlyOccurrence finds the configured day within the month containing ref,
// rolling to the following month when ref is already past it. A numeric day
// beyond the month's length clamps to the last day of that month; "eom"
// always selects the last day.
func monthlyOccurrence(ref civil.Date, day *string) civil.Date {
	spec := models.MonthlyDayEOM
	if day != nil {
		spec = *day
	}

	occ := resolveMonthlyDay(ref.Year, ref.Month, spec)
	if occ.Before(ref) {
		year, month := nextMonth(ref.Year, ref.Month)
		occ = resolveMonthlyDay(year, month, spec)
	}
	return occ
}

func resolveMonthlyDay(year int, month time.Month, spec string) civil.Date {
	last := daysInMonth(year, month)
	day := last
	if spec != models.MonthlyDayEOM {
		if n, err := strconv.Atoi(spec); err == nil {
			day = n
			if day > last {
				day = last
			}
		}
	}
	return civil.Date{Year: year, Month: month, Day: day}
}

func nthWeekdayOfMonth(year int, month time.Month, w time.Weekday, n int) civil.Date {
	first := civil.Date{Year: year, Month: month, Day: 1}
	offset := (int(w) - int(weekdayOf(first)) + 7) % 7
	return first.AddDays(offset + 7*(n-1))
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
