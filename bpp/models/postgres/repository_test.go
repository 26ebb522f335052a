package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/benefits-network/benefits-bpp/bpp/models"
)

type RepositoryTestSuite struct {
	suite.Suite
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (r *RepositoryTestSuite) TestGetApplicationStats() {
	tests := []struct {
		name          string
		benefitIDs    []string
		expQueryRegex string
		args          []interface{}
		rows          [][]interface{}
		expected      map[string]models.ApplicationStats
	}{
		{
			"CountsByStatus",
			[]string{"12", "13"},
			`SELECT "benefitId", status, COUNT(*) FROM applications WHERE "benefitId" IN ($1, $2) GROUP BY "benefitId", status`,
			[]interface{}{"12", "13"},
			[][]interface{}{
				{"12", "pending", 3},
				{"12", "approved", 2},
				{"12", "rejected", 1},
				{"12", "withdrawn", 4},
				{"13", "approved", 5},
			},
			map[string]models.ApplicationStats{
				"12": {ApplicationsCount: 10, PendingApplicationsCount: 3, ApprovedApplicationsCount: 2, RejectedApplicationsCount: 1},
				"13": {ApplicationsCount: 5, ApprovedApplicationsCount: 5},
			},
		},
		{
			"NoApplications",
			[]string{"14"},
			`SELECT "benefitId", status, COUNT(*) FROM applications WHERE "benefitId" IN ($1) GROUP BY "benefitId", status`,
			[]interface{}{"14"},
			nil,
			map[string]models.ApplicationStats{"14": {}},
		},
		{
			"DuplicateIDs",
			[]string{"12", "12"},
			`SELECT "benefitId", status, COUNT(*) FROM applications WHERE "benefitId" IN ($1) GROUP BY "benefitId", status`,
			[]interface{}{"12"},
			[][]interface{}{{"12", nil, 2}},
			map[string]models.ApplicationStats{"12": {ApplicationsCount: 2}},
		},
	}

	for _, tt := range tests {
		r.T().Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer func() {
				assert.NoError(t, mock.ExpectationsWereMet())
				db.Close()
			}()

			rows := sqlmock.NewRows([]string{"benefitId", "status", "count"})
			for _, row := range tt.rows {
				rows.AddRow(row[0], row[1], row[2])
			}

			args := make([]driver.Value, 0, len(tt.args))
			for _, arg := range tt.args {
				args = append(args, arg)
			}
			mock.ExpectQuery(fmt.Sprintf("^%s$", regexp.QuoteMeta(tt.expQueryRegex))).
				WithArgs(args...).
				WillReturnRows(rows)

			repo := NewRepository(db)
			stats, err := repo.GetApplicationStats(context.Background(), tt.benefitIDs)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, stats)
		})
	}
}

func (r *RepositoryTestSuite) TestGetApplicationStatsNoIDs() {
	db, mock, err := sqlmock.New()
	assert.NoError(r.T(), err)
	defer db.Close()

	stats, err := NewRepository(db).GetApplicationStats(context.Background(), nil)
	assert.NoError(r.T(), err)
	assert.Empty(r.T(), stats)
	// No query is issued
	assert.NoError(r.T(), mock.ExpectationsWereMet())
}

func (r *RepositoryTestSuite) TestGetApplicationStatsQueryError() {
	db, mock, err := sqlmock.New()
	assert.NoError(r.T(), err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "benefitId", status, COUNT(*) FROM applications`)).
		WillReturnError(errors.New("connection refused"))

	stats, err := NewRepository(db).GetApplicationStats(context.Background(), []string{"12"})
	assert.Nil(r.T(), stats)
	assert.EqualError(r.T(), err, "failed to query application counts: connection refused")
	assert.NoError(r.T(), mock.ExpectationsWereMet())
}

func (r *RepositoryTestSuite) TestGetApplicationStatsScanError() {
	db, mock, err := sqlmock.New()
	assert.NoError(r.T(), err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "benefitId", status, COUNT(*) FROM applications`)).
		WillReturnRows(sqlmock.NewRows([]string{"benefitId", "status", "count"}).AddRow("12", "pending", "many"))

	_, err = NewRepository(db).GetApplicationStats(context.Background(), []string{"12"})
	assert.ErrorContains(r.T(), err, "failed to scan application counts")
}
