package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etukas/marketplace/internal/model"
	"github.com/etukas/marketplace/internal/repository"
)

const getListingQ = `FROM listings l JOIN users u ON u\.id = l\.user_id WHERE l\.id=\? LIMIT 1`

func serviceListingRow(id, ownerID int64) *sqlmock.Rows {
	now := time.Now()
	cols := []string{"id", "user_id", "kind", "title", "description", "category", "images",
		"lat", "lng", "address", "rating", "num_reviews", "is_active",
		"price", "unit", "stock", "brand", "specifications",
		"hourly_rate", "daily_rate", "visit_charge", "experience_years", "skills", "availability", "is_verified",
		"rate_unit", "per_feet_rate", "model_name", "capacity", "owner_operator",
		"created_at", "updated_at", "name", "phone"}
	return sqlmock.NewRows(cols).AddRow(
		id, ownerID, "service", "Mason Crew", "Brickwork and plastering.", "Masonry", nil,
		17.4, 78.5, nil, 0.0, 0, true,
		nil, nil, nil, nil, nil,
		0.0, 1200.0, 100.0, 8, nil, "All Days", false,
		nil, nil, nil, nil, nil,
		now, now, "John Seller", "9876543211")
}

func mutationContext(method, body, id string, uid uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("user_id", uid)
	c.Set("role", role)
	return c, rec
}

func TestUpdateListingNonOwnerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewListingHandler(repository.NewListingRepo(db))

	// The listing belongs to user 10; user 20 holds a selling role but
	// does not own it. No UPDATE may reach the store.
	mock.ExpectQuery(getListingQ).WillReturnRows(serviceListingRow(7, 10))

	c, rec := mutationContext(http.MethodPut, `{"title":"Hijacked"}`, "7", 20, model.RoleSeller)
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteListingNonOwnerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewListingHandler(repository.NewListingRepo(db))

	mock.ExpectQuery(getListingQ).WillReturnRows(serviceListingRow(7, 10))

	c, rec := mutationContext(http.MethodDelete, "", "7", 20, model.RoleSeller)
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteListingAdminAllowed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	h := NewListingHandler(repository.NewListingRepo(db))

	mock.ExpectQuery(getListingQ).WillReturnRows(serviceListingRow(7, 10))
	mock.ExpectExec(`DELETE FROM listings WHERE id=\?`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := mutationContext(http.MethodDelete, "", "7", 99, model.RoleAdmin)
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
