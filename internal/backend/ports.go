// Package backend defines the ports to the remote transaction service.
package backend

import (
	"context"

	"perfin/internal/core"
)

// Ports for the remote transaction collaborator.
type (
	// Lister fetches the full ordered transaction collection.
	Lister interface {
		List(ctx context.Context) ([]core.Transaction, error)
	}

	// Creator submits a draft and returns the confirmed transaction,
	// which may carry a server-assigned id.
	Creator interface {
		Create(ctx context.Context, draft core.Draft) (core.Transaction, error)
	}

	// Client is the full remote transaction service surface.
	Client interface {
		Lister
		Creator
	}
)
