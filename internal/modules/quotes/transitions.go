package quotes

import "charter-booking/internal/models"

// allowedTransitions is the quote state machine as a directed graph.
// quoted -> quoted covers re-assignment of a different driver while the
// payment window is still open; paid, rejected and expired are terminal.
var allowedTransitions = map[models.QuoteStatus][]models.QuoteStatus{
	models.StatusDraft:       {models.StatusSubmitted},
	models.StatusSubmitted:   {models.StatusNegotiating, models.StatusQuoted, models.StatusRejected},
	models.StatusNegotiating: {models.StatusAccepted, models.StatusRejected},
	models.StatusAccepted:    {models.StatusQuoted},
	models.StatusQuoted:      {models.StatusQuoted, models.StatusPaid, models.StatusExpired},
	models.StatusRejected:    {},
	models.StatusPaid:        {},
	models.StatusExpired:     {},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to models.QuoteStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// quotableStatuses are the source states from which a driver may be bound
// and the quote (re)priced.
var quotableStatuses = []models.QuoteStatus{
	models.StatusSubmitted,
	models.StatusAccepted,
	models.StatusQuoted,
}

func isQuotable(s models.QuoteStatus) bool {
	for _, q := range quotableStatuses {
		if q == s {
			return true
		}
	}
	return false
}
