package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"cafe_directory/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const testSecret = "api-test-secret"

// newTestDB opens gorm over a sqlmock connection. Default transactions are
// skipped so write expectations stay single statements.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true, TranslateError: true})
	require.NoError(t, err)
	return gdb, mock
}

// testRedis points at nothing; cache reads miss and invalidation errors are
// ignored, so handlers fall through to the database.
func testRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
}

// doJSON performs a JSON request against the router, optionally with a
// bearer token.
func doJSON(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// setUserID stands in for the JWT middleware on routes that normally sit
// behind it.
func setUserID(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id)
		c.Next()
	}
}

func userRows(users ...domain.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "email", "username", "password", "admin"})
	for _, u := range users {
		rows.AddRow(u.ID, u.Email, u.Username, u.Password, u.Admin)
	}
	return rows
}

func cafeRows(cafes ...domain.Cafe) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "location", "seats", "has_wifi", "coffee_price", "potentially_closed", "deleted"})
	for _, c := range cafes {
		rows.AddRow(c.ID, c.Name, c.Location, c.Seats, c.HasWifi, c.CoffeePrice, c.PotentiallyClosed, c.Deleted)
	}
	return rows
}

func init() {
	gin.SetMode(gin.TestMode)
}
