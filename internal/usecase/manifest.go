package usecase

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	domainErrors "github.com/printware/printdesk/internal/domain/errors"
	"github.com/printware/printdesk/internal/domain/model"
)

// ParseManifest extracts distinct designs from a composite upload manifest.
// The manifest is a line protocol: one `design name,copies` pair per line,
// blank lines and `#` comments ignored. Repeated design names accumulate
// copies instead of producing duplicate child orders.
func ParseManifest(payload []byte) ([]model.DesignSpec, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, domainErrors.ErrEmptyManifest
	}

	index := make(map[string]int)
	var designs []model.DesignSpec

	scanner := bufio.NewScanner(bytes.NewReader(payload))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		name, copiesField, ok := strings.Cut(text, ",")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: missing copies field", domainErrors.ErrInvalidManifest, line)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: line %d: empty design name", domainErrors.ErrInvalidManifest, line)
		}

		copies, err := strconv.Atoi(strings.TrimSpace(copiesField))
		if err != nil || copies <= 0 {
			return nil, fmt.Errorf("%w: line %d: invalid copies %q", domainErrors.ErrInvalidManifest, line, strings.TrimSpace(copiesField))
		}

		if pos, seen := index[name]; seen {
			designs[pos].Copies += copies
			continue
		}
		index[name] = len(designs)
		designs = append(designs, model.DesignSpec{Name: name, Copies: copies})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrInvalidManifest, err)
	}

	if len(designs) == 0 {
		return nil, domainErrors.ErrEmptyManifest
	}
	return designs, nil
}
