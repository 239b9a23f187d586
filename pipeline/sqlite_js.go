//go:build js

package pipeline

import (
	"context"
	"errors"

	"github.com/lucasjlepore/stepcadence"
)

var errSQLiteUnavailable = errors.New("sqlite output unavailable in js builds")

func writeSummarySQLite(_ context.Context, _ string, _ []stepcadence.SummaryRow) error {
	return errSQLiteUnavailable
}
