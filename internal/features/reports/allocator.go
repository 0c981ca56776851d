package reports

import (
	"context"
	"crypto/rand"
	"fmt"

	apperrors "github.com/civicfix/civicfix-api/pkg/errors"
)

const (
	idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	idLength   = 8

	// 62^8 candidate ids make a collision vanishingly rare; the cap only
	// guards against a store that keeps answering "exists".
	maxAllocateAttempts = 20
)

// ExistenceChecker answers whether a report id is already taken. The durable
// store is the source of truth, not the allocator.
type ExistenceChecker interface {
	IDExists(ctx context.Context, id string) (bool, error)
}

// IDAllocator produces unique short report identifiers
type IDAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

// Allocator draws 8-character ids from a 62-symbol alphabet and retries on
// collision against the store. No id is reserved ahead of use, so a failed
// allocation leaks nothing.
type Allocator struct {
	store ExistenceChecker
}

func NewAllocator(store ExistenceChecker) *Allocator {
	return &Allocator{store: store}
}

func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		id, err := randomID(idLength)
		if err != nil {
			return "", fmt.Errorf("%w: %v", apperrors.ErrAllocation, err)
		}

		exists, err := a.store.IDExists(ctx, id)
		if err != nil {
			// Store unavailable: abort the whole ingestion rather than
			// persist a report whose id was never verified.
			return "", fmt.Errorf("%w: existence check: %v", apperrors.ErrAllocation, err)
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: exhausted %d attempts", apperrors.ErrAllocation, maxAllocateAttempts)
}

// randomID samples uniformly from idAlphabet using rejection sampling to
// avoid modulo bias.
func randomID(length int) (string, error) {
	// Largest multiple of len(idAlphabet) below 256
	max := byte(256 - (256 % len(idAlphabet)))

	id := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(id) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= max {
				continue
			}
			id = append(id, idAlphabet[int(b)%len(idAlphabet)])
			if len(id) == length {
				break
			}
		}
	}
	return string(id), nil
}
