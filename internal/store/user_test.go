package store

import (
	"errors"
	"testing"

	"github.com/dukerupert/hestia/internal/database"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	bcryptCost = bcrypt.MinCost
}

func setupUserTestDB(t *testing.T) *UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserStore(db)
}

func TestUserCreate(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.Create(" Alice@Example.com ", "Alice", "secret123")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want %q", u.Email, "alice@example.com")
	}
	if u.Name != "Alice" {
		t.Errorf("name = %q, want %q", u.Name, "Alice")
	}
	if u.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if !u.IsActive {
		t.Error("expected new user to be active")
	}
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	us := setupUserTestDB(t)

	if _, err := us.Create("alice@example.com", "Alice", "secret123"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := us.Create("ALICE@example.com", "Alice2", "secret123")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestUserGetByIDNotFound(t *testing.T) {
	us := setupUserTestDB(t)

	u, err := us.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserGetByEmail(t *testing.T) {
	us := setupUserTestDB(t)

	created, _ := us.Create("alice@example.com", "Alice", "secret123")

	u, err := us.GetByEmail("Alice@Example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u == nil || u.ID != created.ID {
		t.Fatalf("got %+v, want user %d", u, created.ID)
	}

	u, err = us.GetByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserUpdate(t *testing.T) {
	us := setupUserTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "secret123")
	us.Create("bob@example.com", "Bob", "secret123")

	u, err := us.Update(alice.ID, "alice@home.example", "Alice Smith")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Email != "alice@home.example" || u.Name != "Alice Smith" {
		t.Errorf("got %+v", u)
	}

	if _, err := us.Update(alice.ID, "bob@example.com", "Alice"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}

	u, err = us.Update(999, "x@example.com", "X")
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if u != nil {
		t.Error("expected nil for nonexistent user")
	}
}

func TestUserPassword(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice", "secret123")

	ok, err := us.CheckPassword(u.ID, "secret123")
	if err != nil || !ok {
		t.Fatalf("CheckPassword(correct) = %v, %v", ok, err)
	}
	if ok, _ := us.CheckPassword(u.ID, "wrong"); ok {
		t.Error("expected mismatch for wrong password")
	}

	if err := us.SetPassword(u.ID, "newpass456"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if ok, _ := us.CheckPassword(u.ID, "secret123"); ok {
		t.Error("old password still accepted")
	}
	if ok, _ := us.CheckPassword(u.ID, "newpass456"); !ok {
		t.Error("new password rejected")
	}

	if ok, err := us.CheckPassword(999, "secret123"); ok || err != nil {
		t.Errorf("CheckPassword(unknown) = %v, %v; want false, nil", ok, err)
	}
}

func TestUserDelete(t *testing.T) {
	us := setupUserTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice", "secret123")
	if err := us.Delete(u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := us.GetByID(u.ID)
	if got != nil {
		t.Error("expected user to be deleted")
	}
}
