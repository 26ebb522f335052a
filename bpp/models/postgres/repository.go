package postgres

import (
	"context"
	"database/sql"

	"github.com/huandu/go-sqlbuilder"
	"github.com/pkg/errors"

	"github.com/benefits-network/benefits-bpp/bpp/constants"
	"github.com/benefits-network/benefits-bpp/bpp/models"
)

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

const (
	sqlFlavor = sqlbuilder.PostgreSQL
)

// Ensure Repository satisfies the interface
var _ models.Repository = &Repository{}

type Repository struct {
	queryable
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

func (r *Repository) GetApplicationStats(ctx context.Context, benefitIDs []string) (map[string]models.ApplicationStats, error) {
	stats := make(map[string]models.ApplicationStats, len(benefitIDs))
	if len(benefitIDs) == 0 {
		return stats, nil
	}

	ids := make([]interface{}, 0, len(benefitIDs))
	for _, id := range benefitIDs {
		if _, ok := stats[id]; ok {
			continue
		}
		stats[id] = models.ApplicationStats{}
		ids = append(ids, id)
	}

	sb := sqlFlavor.NewSelectBuilder()
	sb.Select(`"benefitId"`, "status", "COUNT(*)").From("applications").
		Where(sb.In(`"benefitId"`, ids...)).
		GroupBy(`"benefitId"`, "status")

	query, args := sb.Build()
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query application counts")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			benefitID string
			status    sql.NullString
			count     int
		)
		if err := rows.Scan(&benefitID, &status, &count); err != nil {
			return nil, errors.Wrap(err, "failed to scan application counts")
		}

		s := stats[benefitID]
		s.ApplicationsCount += count
		switch status.String {
		case constants.ApplicationPending:
			s.PendingApplicationsCount += count
		case constants.ApplicationApproved:
			s.ApprovedApplicationsCount += count
		case constants.ApplicationRejected:
			s.RejectedApplicationsCount += count
		}
		stats[benefitID] = s
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read application counts")
	}

	return stats, nil
}
