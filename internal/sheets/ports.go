package sheets

import (
	"context"

	"begroting/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionSource fetches the full transaction feed. The feed is
	// read-only; ingestion normalizes rows and the pipeline derives
	// everything else.
	TransactionSource interface {
		Fetch(ctx context.Context) ([]core.Transaction, error)
	}
)
