package notifier

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/update-comb/app/config"
	"github.com/lysyi3m/update-comb/app/ledger"
)

// maxRecordsPerMessage bounds the rendered batch. The cursor still advances
// past everything pending; older records are summarized, not resent.
const maxRecordsPerMessage = 20

func formatNotification(locale string, records []ledger.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔔 *New software updates*\n_%s_\n\n", config.DisplayName(locale))

	shown := records
	omitted := 0
	if len(shown) > maxRecordsPerMessage {
		// Newest records carry the highest ids; keep those.
		omitted = len(shown) - maxRecordsPerMessage
		shown = shown[omitted:]
	}

	for i, rec := range shown {
		if rec.URL != "" {
			fmt.Fprintf(&b, "%d. [%s](%s) - %s - %s\n", i+1, rec.Name, rec.URL, rec.Target, rec.Date)
		} else {
			fmt.Fprintf(&b, "%d. %s - %s - %s\n", i+1, rec.Name, rec.Target, rec.Date)
		}
	}

	if omitted > 0 {
		fmt.Fprintf(&b, "\n_…and %d older updates_\n", omitted)
	}

	return b.String()
}
