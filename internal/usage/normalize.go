package usage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// NormalizeID converts a user identifier in any driver representation to
// its canonical string form. UUIDs render lowercase and hyphenated whether
// they arrive as text, bytes or pgtype values. Nil, invalid and empty ids
// report false and must be left out of any set.
func NormalizeID(v interface{}) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return normalizeString(id)
	case *string:
		if id == nil {
			return "", false
		}
		return normalizeString(*id)
	case []byte:
		if len(id) == 16 {
			u, err := uuid.FromBytes(id)
			if err == nil {
				return u.String(), true
			}
		}
		return normalizeString(string(id))
	case [16]byte:
		return uuid.UUID(id).String(), true
	case uuid.UUID:
		return id.String(), true
	case pgtype.UUID:
		if !id.Valid {
			return "", false
		}
		return uuid.UUID(id.Bytes).String(), true
	case pgtype.Text:
		if !id.Valid {
			return "", false
		}
		return normalizeString(id.String)
	case int:
		return strconv.Itoa(id), true
	case int32:
		return strconv.FormatInt(int64(id), 10), true
	case int64:
		return strconv.FormatInt(id, 10), true
	case fmt.Stringer:
		return normalizeString(id.String())
	default:
		return normalizeString(fmt.Sprint(id))
	}
}

func normalizeString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if u, err := uuid.Parse(s); err == nil {
		return u.String(), true
	}
	return s, true
}

// idSet is a set of canonical user ids.
type idSet map[string]struct{}

func (s idSet) add(v interface{}) {
	if id, ok := NormalizeID(v); ok {
		s[id] = struct{}{}
	}
}

// unionIDs returns the distinct canonical ids across all sources.
func unionIDs(sources ...[]interface{}) idSet {
	set := make(idSet)
	for _, ids := range sources {
		for _, v := range ids {
			set.add(v)
		}
	}
	return set
}
