package api

import (
	"context"
	"database/sql/driver"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/donutnomad/gormskipper/example/cakeapi/db"
	"github.com/donutnomad/gormskipper/example/cakeapi/entity"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-resty/resty/v2"
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	gormmysql "gorm.io/driver/mysql"
)

const (
	insertCake = "INSERT INTO `cakes` (`name`,`flavor`,`price`,`baked_on`) VALUES (?,?,?,?)"
	selectByID = "SELECT * FROM `cakes` WHERE `cakes`.`id` = ? ORDER BY `cakes`.`id` LIMIT ?"
	deleteByID = "DELETE FROM `cakes` WHERE `cakes`.`id` = ?"
	cakeBody   = `{"id":99,"name":"Pancake","flavor":"maple","price":"4.50","baked_on":"2024-05-01T00:00:00Z"}`
)

var cakeColumns = []string{"id", "name", "flavor", "price", "baked_on"}

func newTestClient(t *testing.T, opts ...Option) (*resty.Client, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := db.OpenDialector(gormmysql.New(gormmysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), zap.NewNop())
	require.NoError(t, err)

	srv := httptest.NewServer(New(gdb, zap.NewNop(), opts...).Router())
	t.Cleanup(srv.Close)

	client := resty.New().
		SetBaseURL(srv.URL).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	return client, mock
}

func cakeRows() *sqlmock.Rows {
	return sqlmock.NewRows(cakeColumns).
		AddRow(7, "Pancake", "maple", "4.50", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
}

func duplicateEntry() error {
	return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Pancake' for key 'cakes.idx_cakes_name'"}
}

func TestCreate(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectExec(regexp.QuoteMeta(insertCake)).
		WithArgs("Pancake", "maple", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	var created entity.Cake
	resp, err := client.R().SetHeader("Content-Type", "application/json").
		SetBody(cakeBody).SetResult(&created).Post("/cakes")
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode())
	assert.Equal(t, "/cakes/7", resp.Header().Get("Location"))
	assert.NotEmpty(t, resp.Header().Get(RequestIDHeader))
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, "Pancake", created.Name)
	assert.Equal(t, "4.5", created.Price.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFailures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		opts     []Option
		setup    func(mock sqlmock.Sqlmock)
		status   int
		location string
	}{
		{
			name:   "bad body",
			body:   `{"name":`,
			setup:  func(sqlmock.Sqlmock) {},
			status: http.StatusBadRequest,
		},
		{
			name: "storage error",
			body: cakeBody,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(insertCake)).WillReturnError(errors.New("connection reset"))
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "duplicate answers 500 by default",
			body: cakeBody,
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(insertCake)).WillReturnError(duplicateEntry())
			},
			status: http.StatusInternalServerError,
		},
		{
			name: "identical resubmission is redirected",
			body: cakeBody,
			opts: []Option{WithDuplicatePolicy(SeeOtherWhenIdentical)},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(insertCake)).WillReturnError(duplicateEntry())
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `cakes` WHERE `name` = ? AND `flavor` = ? AND `price` = ? AND `baked_on` = ?")).
					WillReturnRows(cakeRows())
			},
			status:   http.StatusSeeOther,
			location: "/cakes/7",
		},
		{
			name: "colliding submission conflicts",
			body: cakeBody,
			opts: []Option{WithDuplicatePolicy(SeeOtherWhenIdentical)},
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(insertCake)).WillReturnError(duplicateEntry())
				mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `cakes` WHERE")).
					WillReturnRows(sqlmock.NewRows(cakeColumns))
			},
			status: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t, tt.opts...)
			tt.setup(mock)

			resp, err := client.R().SetHeader("Content-Type", "application/json").SetBody(tt.body).Post("/cakes")
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode())
			assert.Equal(t, tt.location, resp.Header().Get("Location"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		setup  func(mock sqlmock.Sqlmock)
		status int
	}{
		{
			name: "found",
			path: "/cakes/7",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(selectByID)).WithArgs(int64(7), sqlmock.AnyArg()).WillReturnRows(cakeRows())
			},
			status: http.StatusOK,
		},
		{
			name: "not found",
			path: "/cakes/8",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(selectByID)).WithArgs(int64(8), sqlmock.AnyArg()).WillReturnRows(sqlmock.NewRows(cakeColumns))
			},
			status: http.StatusNotFound,
		},
		{
			name: "storage error",
			path: "/cakes/7",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(selectByID)).WillReturnError(errors.New("connection reset"))
			},
			status: http.StatusInternalServerError,
		},
		{
			name:   "bad id",
			path:   "/cakes/pancake",
			setup:  func(sqlmock.Sqlmock) {},
			status: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t)
			tt.setup(mock)

			var cake entity.Cake
			resp, err := client.R().SetResult(&cake).Get(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode())
			if tt.status == http.StatusOK {
				assert.Equal(t, int64(7), cake.ID)
				assert.Equal(t, "maple", cake.Flavor)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(mock sqlmock.Sqlmock)
		status int
	}{
		{
			name: "deleted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(deleteByID)).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
			},
			status: http.StatusOK,
		},
		{
			name: "nothing deleted",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(deleteByID)).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			status: http.StatusNotFound,
		},
		{
			name: "storage error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(deleteByID)).WillReturnError(errors.New("connection reset"))
			},
			status: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t)
			tt.setup(mock)

			resp, err := client.R().Delete("/cakes/7")
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCollection(t *testing.T) {
	tests := []struct {
		name  string
		query map[string]string
		sql   string
		args  []driver.Value
	}{
		{
			name: "all",
			sql:  "SELECT * FROM `cakes` ORDER BY `cakes`.`id`",
		},
		{
			name:  "unknown parameters are ignored",
			query: map[string]string{"flavor": "maple", "bogus": "1"},
			sql:   "SELECT * FROM `cakes` WHERE `flavor` = ? ORDER BY `cakes`.`id`",
			args:  []driver.Value{"maple"},
		},
		{
			name:  "every recognized parameter filters",
			query: map[string]string{"name": "Pancake", "flavor": "maple"},
			sql:   "SELECT * FROM `cakes` WHERE `flavor` = ? AND `name` = ? ORDER BY `cakes`.`id`",
			args:  []driver.Value{"maple", "Pancake"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mock := newTestClient(t)
			expect := mock.ExpectQuery(regexp.QuoteMeta(tt.sql)).WillReturnRows(cakeRows())
			if len(tt.args) > 0 {
				expect.WithArgs(tt.args...)
			}

			var cakes []entity.Cake
			resp, err := client.R().SetQueryParams(tt.query).SetResult(&cakes).Get("/cakes")
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode())
			require.Len(t, cakes, 1)
			assert.Equal(t, "Pancake", cakes[0].Name)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCollectionEmpty(t *testing.T) {
	client, mock := newTestClient(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `cakes`")).WillReturnRows(sqlmock.NewRows(cakeColumns))

	resp, err := client.R().Get("/cakes")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, "[]", resp.String())
}

func TestHealthz(t *testing.T) {
	client, _ := newTestClient(t)
	resp, err := client.R().Get("/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestOpenAPI(t *testing.T) {
	client, _ := newTestClient(t)
	resp, err := client.R().Get("/openapi.json")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())

	doc, err := openapi3.NewLoader().LoadFromData(resp.Body())
	require.NoError(t, err)
	require.NoError(t, doc.Validate(context.Background()))

	for _, path := range []string{"/cakes", "/cakes/{id}"} {
		assert.NotNil(t, doc.Paths.Value(path), path)
	}
	assert.NotNil(t, doc.Paths.Value("/cakes").Post)
	assert.NotNil(t, doc.Paths.Value("/cakes/{id}").Delete)

	cake := doc.Components.Schemas["Cake"].Value
	require.NotNil(t, cake)
	assert.Contains(t, cake.Properties, "id")
	assert.Contains(t, cake.Properties, "baked_on")

	newCake := doc.Components.Schemas["CakeNewModel"].Value
	require.NotNil(t, newCake)
	assert.NotContains(t, newCake.Properties, "id")
	assert.ElementsMatch(t, []string{"name", "flavor", "price", "baked_on"}, newCake.Required)
	assert.Equal(t, "decimal", newCake.Properties["price"].Value.Format)
}
