package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"cafe_directory/internal/config"
	"cafe_directory/internal/domain"
	"cafe_directory/internal/middleware"
	"cafe_directory/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func authRouter(db *gorm.DB, superAdminEmail string) *gin.Engine {
	cfg := &config.Config{JWTSecret: testSecret, SuperAdminEmail: superAdminEmail}
	r := gin.New()
	r.POST("/register", RegisterHandler(db, cfg))
	r.POST("/login", LoginHandler(db, testSecret))
	return r
}

func TestRegisterValidation(t *testing.T) {
	db, mock := newTestDB(t)
	r := authRouter(db, "")

	// Username below the 5-character minimum: no query may run
	rec := doJSON(r, http.MethodPost, "/register", `{"email":"a@example.com","username":"abc","password":"pw"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed email
	rec = doJSON(r, http.MethodPost, "/register", `{"email":"not-an-email","username":"validname","password":"pw"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE email = (.+)").
		WillReturnRows(userRows(domain.User{ID: 1, Email: "taken@example.com", Username: "takenuser"}))

	r := authRouter(db, "")
	rec := doJSON(r, http.MethodPost, "/register", `{"email":"taken@example.com","username":"newcomer","password":"pw"}`, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "login instead")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterSuccessAutoLogin(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE email = (.+)").
		WillReturnRows(userRows())
	mock.ExpectExec("INSERT INTO `users`").
		WithArgs("new@example.com", "newcomer", sqlmock.AnyArg(), false).
		WillReturnResult(sqlmock.NewResult(9, 1))

	r := authRouter(db, "")
	rec := doJSON(r, http.MethodPost, "/register", `{"email":"new@example.com","username":"newcomer","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Registration logs the account in: the token names the new user
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := utils.ParseJWT(resp.Token, testSecret)
	require.NoError(t, err)
	require.EqualValues(t, 9, claims.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterSuperAdminEmail(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE email = (.+)").
		WillReturnRows(userRows())
	// The configured super-admin email registers with the admin flag set
	mock.ExpectExec("INSERT INTO `users`").
		WithArgs("boss@example.com", "bigcheese", sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(1, 1))

	r := authRouter(db, "boss@example.com")
	rec := doJSON(r, http.MethodPost, "/register", `{"email":"boss@example.com","username":"bigcheese","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmail(t *testing.T) {
	db, mock := newTestDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE email = (.+)").
		WillReturnRows(userRows())

	r := authRouter(db, "")
	rec := doJSON(r, http.MethodPost, "/login", `{"email":"ghost@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "doesn't exist in our records")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)

	db, mock := newTestDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE email = (.+)").
		WillReturnRows(userRows(domain.User{ID: 3, Email: "alice@example.com", Username: "alice77", Password: string(hash)}))

	r := authRouter(db, "")
	rec := doJSON(r, http.MethodPost, "/login", `{"email":"alice@example.com","password":"wrong-password"}`, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "Incorrect password")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutRevokesSession(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	token, err := utils.GenerateJWT(3, testSecret)
	require.NoError(t, err)

	r := gin.New()
	auth := middleware.JWTAuthMiddleware(testSecret, rdb)
	r.GET("/logout", auth, LogoutHandler(rdb))
	r.GET("/session", auth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("userID")})
	})

	// The token authenticates before logout
	rec := doJSON(r, http.MethodGet, "/session", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(r, http.MethodGet, "/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Logged out")

	// The denylisted token is rejected even though its signature is valid
	rec = doJSON(r, http.MethodGet, "/session", "", token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "logged out")
}

func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	require.NoError(t, err)

	db, mock := newTestDB(t)
	mock.ExpectQuery("SELECT (.+) FROM `users` WHERE email = (.+)").
		WillReturnRows(userRows(domain.User{ID: 3, Email: "alice@example.com", Username: "alice77", Password: string(hash)}))

	r := authRouter(db, "")
	rec := doJSON(r, http.MethodPost, "/login", `{"email":"alice@example.com","password":"right-password"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	claims, err := utils.ParseJWT(resp.Token, testSecret)
	require.NoError(t, err)
	require.EqualValues(t, 3, claims.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}
