package tree

import (
	"fmt"
	"strconv"
	"strings"

	errs "github.com/matzehuels/narrative/pkg/errors"
	"github.com/matzehuels/narrative/pkg/item"
)

// EdgeKey names a link between two items, From being the older one.
type EdgeKey struct {
	From item.ID
	To   item.ID
}

const edgeSep = "->"

// String returns the canonical form "from->to".
func (k EdgeKey) String() string {
	return fmt.Sprintf("%d%s%d", k.From, edgeSep, k.To)
}

// ParseEdgeKey parses the canonical "from->to" form. Surrounding white space
// is ignored. Malformed keys yield an INVALID_EDGE_KEY error.
func ParseEdgeKey(s string) (EdgeKey, error) {
	from, to, ok := strings.Cut(strings.TrimSpace(s), edgeSep)
	if !ok {
		return EdgeKey{}, errs.New(errs.ErrCodeInvalidEdgeKey, "edge key %q: expected form from->to", s)
	}
	u, err := parseID(from)
	if err != nil {
		return EdgeKey{}, errs.Wrap(errs.ErrCodeInvalidEdgeKey, err, "edge key %q: bad source", s)
	}
	v, err := parseID(to)
	if err != nil {
		return EdgeKey{}, errs.Wrap(errs.ErrCodeInvalidEdgeKey, err, "edge key %q: bad target", s)
	}
	if u == v {
		return EdgeKey{}, errs.New(errs.ErrCodeInvalidEdgeKey, "edge key %q: endpoints must differ", s)
	}
	return EdgeKey{From: u, To: v}, nil
}

func parseID(s string) (item.ID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative id %d", n)
	}
	return item.ID(n), nil
}

// MarshalText implements encoding.TextMarshaler.
func (k EdgeKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EdgeKey) UnmarshalText(b []byte) error {
	parsed, err := ParseEdgeKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
