package dataset

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/Baccarat456/experience-harvester/internal/record"
)

func TestPostgres_Append(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := record.Record{
		PlaceID:     float64(1818),
		URL:         "https://www.roblox.com/games/1818",
		ExtractedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO experience_records (place_id, url, extracted_at, payload)")).
		WithArgs("1818", rec.URL, rec.ExtractedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ds := NewPostgres(mock)
	require.NoError(t, ds.Append(context.Background(), rec))
	require.NoError(t, ds.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendNullPlaceID(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rec := record.Record{URL: "https://www.roblox.com/discover"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO experience_records")).
		WithArgs(nil, rec.URL, rec.ExtractedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewPostgres(mock).Append(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_AppendExecError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO experience_records")).
		WillReturnError(errors.New("connection reset"))

	err = NewPostgres(mock).Append(context.Background(), record.Record{URL: "u"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "insert record")
}

func TestPlaceIDText(t *testing.T) {
	t.Parallel()

	require.Nil(t, placeIDText(nil))
	require.Equal(t, "1818", placeIDText("1818"))
	require.Equal(t, "1818", placeIDText(float64(1818)))
	require.Equal(t, "1818", placeIDText(1818))
}
