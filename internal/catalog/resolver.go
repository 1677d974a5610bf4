package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MacJediWizard/flowcatalog/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeApplicationName converts an application name to the stored code
// form: dots become spaces and the result is lower-cased.
func NormalizeApplicationName(name string) string {
	code := strings.TrimSpace(strings.ReplaceAll(name, ".", " "))
	return cases.Lower(language.Und).String(code)
}

// ResolveApplicationID maps an application name to its id. A name with no
// matching application yields found=false and a nil error.
func (r *Reader) ResolveApplicationID(ctx context.Context, name string) (id int, found bool, err error) {
	code := NormalizeApplicationName(name)
	if code == "" {
		return 0, false, nil
	}

	id, err = r.store.LookupApplicationID(ctx, code)
	if errors.Is(err, models.ErrApplicationNotFound) {
		r.logger.Warn().Str("application", name).Msg("application not found")
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolve application %q: %w", name, err)
	}
	if id == 0 {
		r.logger.Warn().Str("application", name).Msg("application resolved to id 0")
		return 0, false, nil
	}
	return id, true, nil
}
