// Package service implements the listing and user-write use cases over
// the domain repository ports.
package service

import (
	"context"

	"user-admin/internal/domain"
	"user-admin/internal/token"
)

// ListingService builds filtered, paginated result sets for the user table.
// Reads are not transactional: the two counts and the page query run
// independently, which is acceptable for a pagination aid.
type ListingService struct {
	users    domain.UserRepository
	codec    *token.Codec
	basePath string
}

// NewListingService creates a ListingService. basePath is the mount point
// of the user routes (e.g. "/admin/users") used to build row action URLs.
func NewListingService(users domain.UserRepository, codec *token.Codec, basePath string) *ListingService {
	return &ListingService{users: users, codec: codec, basePath: basePath}
}

// Fetch returns one page of users matching the query, together with the
// unfiltered and filtered totals, echoing the client's draw token.
func (s *ListingService) Fetch(ctx context.Context, q domain.ListingQuery) (*domain.ListingResult, error) {
	total, err := s.users.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := total
	if q.Filtered() {
		filtered, err = s.users.CountFiltered(ctx, q)
		if err != nil {
			return nil, err
		}
	}

	page, err := s.users.ListPage(ctx, q)
	if err != nil {
		return nil, err
	}

	start, _ := q.Window()
	rows := make([]domain.ListingRow, 0, len(page))
	for i := range page {
		u := page[i]
		tok, err := s.codec.Encode(u.ID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, domain.ListingRow{
			No:        start + i + 1,
			Username:  u.Username,
			Email:     u.Email,
			CreatedAt: u.CreatedAt.Format("2006-01-02 15:04:05"),
			EditURL:   s.basePath + "/edit/" + tok,
			DeleteURL: s.basePath + "/destroy/" + tok,
		})
	}

	return &domain.ListingResult{
		Draw:            q.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Rows:            rows,
	}, nil
}
