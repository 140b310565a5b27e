package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/etukas/marketplace/internal/model"
	"github.com/etukas/marketplace/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// sellerIDAttempts bounds the recompute-and-retry loop for identifier
// collisions under concurrent registration.
const sellerIDAttempts = 3

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// Create inserts a user and returns the stored record. For selling roles
// (admins excluded) a seller identifier is assigned by reading the highest
// sequence for the role/category prefix and inserting with the next one;
// a duplicate-key rejection from a concurrent registration triggers a
// bounded recompute-and-retry.
func (r *UserRepo) Create(ctx context.Context, name, email, password, role, phone string, categories []string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}

	var catJSON []byte
	if len(categories) > 0 {
		catJSON, err = json.Marshal(categories)
		if err != nil {
			return model.User{}, err
		}
	}

	prefix := ""
	if role != model.RoleAdmin {
		primary := ""
		if len(categories) > 0 {
			primary = categories[0]
		}
		prefix = utils.SellerIDPrefix(role, primary)
	}

	for attempt := 0; ; attempt++ {
		var sellerID interface{} // NULL for non-selling roles
		if prefix != "" {
			seq, err := r.maxSellerSequence(ctx, prefix)
			if err != nil {
				return model.User{}, err
			}
			sellerID = utils.FormatSellerID(prefix, seq+1)
		}

		res, err := r.DB.ExecContext(ctx,
			"INSERT INTO users (name, email, password_hash, role, phone, seller_id, seller_categories) VALUES (?,?,?,?,?,?,?)",
			name, email, hash, role, phone, sellerID, catJSON)
		if err == nil {
			id, err := res.LastInsertId()
			if err != nil {
				return model.User{}, err
			}
			return r.GetByID(ctx, uint64(id))
		}
		if !isDuplicateKey(err) {
			return model.User{}, err
		}
		// Which unique key fired? Email duplicates are terminal; seller id
		// duplicates are retried with a fresh sequence.
		if exists, err2 := r.emailExists(ctx, email); err2 == nil && exists {
			return model.User{}, ErrEmailExists
		}
		if prefix == "" {
			// No seller id in play, so the collision is on some other
			// constraint; surface the store error as-is.
			return model.User{}, err
		}
		if attempt+1 >= sellerIDAttempts {
			return model.User{}, ErrSellerIDExhausted
		}
	}
}

func (r *UserRepo) emailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email=?", email).Scan(&n)
	return n > 0, err
}

// maxSellerSequence returns the highest sequence number already issued
// under the given prefix, 0 when none exists yet.
func (r *UserRepo) maxSellerSequence(ctx context.Context, prefix string) (int, error) {
	var last sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT MAX(seller_id) FROM users WHERE seller_id LIKE ?", prefix+"%").Scan(&last)
	if err != nil {
		return 0, err
	}
	if !last.Valid {
		return 0, nil
	}
	return utils.SellerIDSequence(prefix, last.String), nil
}

const userCols = "id,name,email,password_hash,role,phone,seller_id,seller_categories,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var sellerID sql.NullString
	var cats []byte
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Phone,
		&sellerID, &cats, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	if err != nil {
		return u, err
	}
	if sellerID.Valid {
		s := sellerID.String
		u.SellerID = &s
	}
	if len(cats) > 0 {
		_ = json.Unmarshal(cats, &u.SellerCategories)
	}
	return u, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// AddAddress appends a saved address to a user's profile.
func (r *UserRepo) AddAddress(ctx context.Context, a *model.Address) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO addresses (user_id, label, address_line, lat, lng) VALUES (?,?,?,?,?)",
		a.UserID, a.Label, a.AddressLine, a.Lat, a.Lng)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListAddresses returns a user's saved addresses, oldest first.
func (r *UserRepo) ListAddresses(ctx context.Context, userID uint64) ([]model.Address, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, label, address_line, lat, lng FROM addresses WHERE user_id=? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Address{}
	for rows.Next() {
		var a model.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.AddressLine, &a.Lat, &a.Lng); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
