package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etukas/marketplace/internal/model"
)

var errDup = errors.New("Error 1062 (23000): Duplicate entry 'SEC0002' for key 'users.uq_users_seller_id'")

const (
	maxSellerIDQ = `SELECT MAX\(seller_id\) FROM users WHERE seller_id LIKE \?`
	insertUserQ  = `INSERT INTO users`
	emailCountQ  = `SELECT COUNT\(\*\) FROM users WHERE email=\?`
	getUserQ     = `FROM users WHERE id=\? LIMIT 1`
)

func maxRow(v interface{}) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"max"}).AddRow(v)
}

func emailCountRow(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"n"}).AddRow(n)
}

func userRow(id int64, email, role, sellerID string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "phone",
		"seller_id", "seller_categories", "created_at", "updated_at"}).
		AddRow(id, "John Seller", email, "$2a$04$notarealhash", role, "9876543211",
			sellerID, []byte(`["Cement"]`), now, now)
}

func TestCreateSellerRetriesOnIDCollision(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	// Two concurrent registrations under the same prefix reject the
	// insert with a duplicate key; each retry recomputes the sequence.
	mock.ExpectQuery(maxSellerIDQ).WithArgs("SEC%").WillReturnRows(maxRow("SEC0001"))
	mock.ExpectExec(insertUserQ).WillReturnError(errDup)
	mock.ExpectQuery(emailCountQ).WithArgs("seller@etukas.com").WillReturnRows(emailCountRow(0))

	mock.ExpectQuery(maxSellerIDQ).WithArgs("SEC%").WillReturnRows(maxRow("SEC0002"))
	mock.ExpectExec(insertUserQ).WillReturnError(errDup)
	mock.ExpectQuery(emailCountQ).WithArgs("seller@etukas.com").WillReturnRows(emailCountRow(0))

	mock.ExpectQuery(maxSellerIDQ).WithArgs("SEC%").WillReturnRows(maxRow("SEC0003"))
	mock.ExpectExec(insertUserQ).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(getUserQ).WillReturnRows(userRow(7, "seller@etukas.com", model.RoleSeller, "SEC0004"))

	u, err := repo.Create(context.Background(), "John Seller", "seller@etukas.com", "123456",
		model.RoleSeller, "9876543211", []string{"Cement"}, 4)
	require.NoError(t, err)
	require.NotNil(t, u.SellerID)
	assert.Equal(t, "SEC0004", *u.SellerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSellerIDExhausted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	// Every attempt collides; the bounded retry gives up after three.
	for i := 0; i < 3; i++ {
		mock.ExpectQuery(maxSellerIDQ).WithArgs("SEC%").WillReturnRows(maxRow("SEC0009"))
		mock.ExpectExec(insertUserQ).WillReturnError(errDup)
		mock.ExpectQuery(emailCountQ).WillReturnRows(emailCountRow(0))
	}

	_, err = repo.Create(context.Background(), "John Seller", "seller@etukas.com", "123456",
		model.RoleSeller, "9876543211", []string{"Cement"}, 4)
	assert.ErrorIs(t, err, ErrSellerIDExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	// Customers carry no seller id, so the only expected unique key is
	// the email; the disambiguation query confirms it.
	mock.ExpectExec(insertUserQ).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'jane@etukas.com' for key 'users.uq_users_email'"))
	mock.ExpectQuery(emailCountQ).WithArgs("jane@etukas.com").WillReturnRows(emailCountRow(1))

	_, err = repo.Create(context.Background(), "Jane Customer", "jane@etukas.com", "123456",
		model.RoleCustomer, "9876543212", nil, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateKeyWithoutEmailMatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepo(db)

	// A duplicate key with no seller id in play and an email that does
	// not exist is surfaced as the store error, not mislabeled.
	mock.ExpectExec(insertUserQ).WillReturnError(errDup)
	mock.ExpectQuery(emailCountQ).WithArgs("jane@etukas.com").WillReturnRows(emailCountRow(0))

	_, err = repo.Create(context.Background(), "Jane Customer", "jane@etukas.com", "123456",
		model.RoleCustomer, "9876543212", nil, 4)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailExists)
	assert.Contains(t, err.Error(), "1062")
	assert.NoError(t, mock.ExpectationsWereMet())
}
