package service

import (
	"fmt"
	"time"

	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
)

// charge is the output of one rate's pricing pass. baseCents plus
// extraCents always equals the sum of every line item.
type charge struct {
	baseCents  int64
	extraCents int64
	breakdown  []pricingdomain.LineItem
	extras     []pricingdomain.LineItem
}

func (c *charge) total() int64 { return c.baseCents + c.extraCents }

func (c *charge) addBase(item pricingdomain.LineItem) {
	c.baseCents += item.AmountCents
	c.breakdown = append(c.breakdown, item)
}

func (c *charge) addExtra(item pricingdomain.LineItem) {
	c.extraCents += item.AmountCents
	c.extras = append(c.extras, item)
}

// priceCharge dispatches on the rate's normalized type and returns the
// base amount, overflow extras and the audit line items.
func priceCharge(rc *rateContext, entry, exit time.Time, opts *pricingdomain.Options, defaultCourtesy int) charge {
	minutes := int(exit.Sub(entry) / time.Minute)

	switch rc.rateType {
	case pricingdomain.RateTypeHourly:
		return chargeHourly(rc, minutes, opts, defaultCourtesy)
	case pricingdomain.RateTypeDaily:
		return chargeWindowedDays(rc, pricingdomain.WindowKindDaily, entry, exit, minutes)
	case pricingdomain.RateTypeOvernight:
		return chargeWindowedDays(rc, pricingdomain.WindowKindOvernight, entry, exit, minutes)
	case pricingdomain.RateTypeWeekly:
		return chargePeriod(rc, pricingdomain.WindowKindWeekly, 7, minutes)
	case pricingdomain.RateTypeBiweekly:
		return chargePeriod(rc, pricingdomain.WindowKindBiweekly, 14, minutes)
	case pricingdomain.RateTypeMonthly:
		return chargeFlat(rc, "monthly charge")
	default:
		return chargeFlat(rc, "flat charge")
	}
}

// chargeHourly bills started hour fractions with a courtesy allowance on
// the trailing partial hour.
func chargeHourly(rc *rateContext, minutes int, opts *pricingdomain.Options, defaultCourtesy int) charge {
	courtesy := resolveCourtesy(rc.rate, rc.config, opts, defaultCourtesy)
	fractions := hourlyFractions(minutes, courtesy)

	var c charge
	c.addBase(pricingdomain.LineItem{
		Description: fmt.Sprintf("%d hourly fraction(s)", fractions),
		Quantity:    fractions,
		UnitCents:   rc.rate.ValueCents,
		AmountCents: int64(fractions) * rc.rate.ValueCents,
		Minutes:     minutes,
	})
	return c
}

// chargeWindowedDays implements the daily and overnight algorithms: one
// flat charge per calendar day covered by the first matching window, a
// non-free default charge when the entry day matches nothing, and hourly
// overflow past the last matched window's end.
func chargeWindowedDays(rc *rateContext, kind pricingdomain.WindowKind, entry, exit time.Time, minutes int) charge {
	windows := rc.windows[kind]
	if len(windows) == 0 {
		days := ceilDays(minutes)
		var c charge
		c.addBase(pricingdomain.LineItem{
			Description: fmt.Sprintf("%d day(s)", days),
			Quantity:    days,
			UnitCents:   rc.rate.ValueCents,
			AmountCents: int64(days) * rc.rate.ValueCents,
			Minutes:     minutes,
		})
		return c
	}

	var c charge
	entryDay := startOfDay(entry)
	exitDay := startOfDay(exit)

	var lastMatched *ratedomain.TimeWindow
	var lastEnd time.Time

	for day := entryDay; !day.After(exitDay); day = day.AddDate(0, 0, 1) {
		matched := false
		for i := range windows {
			inst := materializeWindow(windows[i], day)
			if minutesOverlap(entry, exit, inst.start, inst.end) == 0 {
				continue
			}
			c.addBase(pricingdomain.LineItem{
				Description: windows[i].WindowType,
				Date:        day.Format(dateLayout),
				Quantity:    1,
				UnitCents:   rc.rate.ValueCents,
				AmountCents: rc.rate.ValueCents,
			})
			lastMatched = &windows[i]
			lastEnd = inst.end
			matched = true
			break
		}
		// The entry day is never free: a stay that fits no configured
		// window still pays the standard charge once.
		if !matched && day.Equal(entryDay) {
			c.addBase(pricingdomain.LineItem{
				Description: "standard window",
				Date:        day.Format(dateLayout),
				Quantity:    1,
				UnitCents:   rc.rate.ValueCents,
				AmountCents: rc.rate.ValueCents,
			})
		}
	}

	if lastMatched != nil && exit.After(lastEnd) && sameCalendarDay(exit, lastEnd) {
		overflow := int(exit.Sub(lastEnd) / time.Minute)
		if overflow > 0 {
			extraRate := resolveExtraRate(rc, lastMatched, kind)
			c.addExtra(hourlyExtraItem(extraRate, overflow))
		}
	}

	return c
}

// chargePeriod implements weekly and biweekly billing: one flat period
// charge with minutes beyond the period allowance billed hourly.
func chargePeriod(rc *rateContext, kind pricingdomain.WindowKind, defaultPeriodDays, minutes int) charge {
	periodDays := defaultPeriodDays
	if rc.config.PeriodDays > 0 {
		periodDays = rc.config.PeriodDays
	}

	var window *ratedomain.TimeWindow
	if ws := rc.windows[kind]; len(ws) > 0 {
		window = &ws[0]
	}
	limit := computePeriodLimit(window, periodDays)

	var c charge
	c.addBase(pricingdomain.LineItem{
		Description: fmt.Sprintf("%s period charge", kind),
		Quantity:    1,
		UnitCents:   rc.rate.ValueCents,
		AmountCents: rc.rate.ValueCents,
		Minutes:     minutes,
	})

	if minutes > limit {
		extraRate := resolveExtraRate(rc, window, kind)
		c.addExtra(hourlyExtraItem(extraRate, minutes-limit))
	}
	return c
}

func chargeFlat(rc *rateContext, label string) charge {
	var c charge
	c.addBase(pricingdomain.LineItem{
		Description: label,
		Quantity:    1,
		UnitCents:   rc.rate.ValueCents,
		AmountCents: rc.rate.ValueCents,
	})
	return c
}

// resolveExtraRate picks the rate that prices overflow minutes: the
// window's own extra rate when resolvable, then the hourly fallback, then
// the rate itself. Daily windows skip the per-window extra rate.
func resolveExtraRate(rc *rateContext, window *ratedomain.TimeWindow, kind pricingdomain.WindowKind) *ratedomain.Rate {
	if kind != pricingdomain.WindowKindDaily && window != nil && window.ExtraRateID != nil {
		if r, ok := rc.related[*window.ExtraRateID]; ok {
			return r
		}
	}
	if rc.hourlyFallback != nil {
		return rc.hourlyFallback
	}
	return rc.rate
}

func hourlyExtraItem(rate *ratedomain.Rate, minutes int) pricingdomain.LineItem {
	courtesy := resolveCourtesy(rate, pricingdomain.ParseRateConfig(rate.Config), nil, 0)
	fractions := hourlyFractions(minutes, courtesy)
	return pricingdomain.LineItem{
		Description: fmt.Sprintf("overflow: %d hourly fraction(s)", fractions),
		Quantity:    fractions,
		UnitCents:   rate.ValueCents,
		AmountCents: int64(fractions) * rate.ValueCents,
		Minutes:     minutes,
	}
}
