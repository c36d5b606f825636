package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns "alert_<unix millis>_<9 random hex chars>".
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("alert_%d_%s", now.UnixMilli(), suffix)
}
