package publishers

import "strconv"

// fifoGroupPrefix groups FIFO messages per digest period.
const fifoGroupPrefix = "digest-"

// attributes returns the routing metadata attached to every event message,
// letting subscribers filter without decoding the body.
func attributes(evt Event) map[string]string {
	return map[string]string{
		"period_tag":      evt.PeriodTag,
		"monthly_fetched": strconv.FormatBool(evt.MonthlyFetched),
		"post_count":      strconv.Itoa(evt.PostCount),
		"failed_count":    strconv.Itoa(len(evt.FailedCommunities)),
	}
}

// fifoGroupID keeps all runs of one ISO week in a single ordered group.
func fifoGroupID(evt Event) string {
	if evt.PeriodTag == "" {
		return fifoGroupPrefix + "unknown"
	}
	return fifoGroupPrefix + evt.PeriodTag
}
