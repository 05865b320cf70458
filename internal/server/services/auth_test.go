package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/trainerhub/portal/internal/common"
	"github.com/trainerhub/portal/internal/server/auth"
	"github.com/trainerhub/portal/internal/server/models"
)

func newAuthService(t *testing.T, db *sql.DB, rm *fakeRepoManager, sender *fakeSender) *AuthService {
	t.Helper()
	return NewAuthService(db, rm, &fakeHasher{}, sender, noopLogger(), testConfig())
}

func activeUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:s3cret",
		Roles:        []string{"TRAINER"},
		Active:       true,
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	user := activeUser()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byUsername: map[string]*models.User{"alice": user}},
		c: &fakeCodesRepo{}, r: &fakeRefreshRepo{},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	pair, err := s.Login(context.Background(), "alice", "s3cret")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("empty tokens: %+v", pair)
	}
	if pair.ExpiresIn != 900 {
		t.Fatalf("want ExpiresIn 900, got %d", pair.ExpiresIn)
	}

	claims, err := auth.ParseToken(pair.AccessToken, []byte("k"))
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if claims.Subject != "alice" || len(claims.Roles) != 1 || claims.Roles[0] != "TRAINER" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	// Issuance revokes whatever was live before inserting the new token.
	if len(rm.r.revokedAllFor) != 1 || rm.r.revokedAllFor[0] != user.ID {
		t.Fatalf("previous tokens not revoked: %v", rm.r.revokedAllFor)
	}
	if !rm.r.created || rm.r.createdToken != pair.RefreshToken {
		t.Fatalf("refresh token not stored: %+v", rm.r)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin_ByEmail(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	user := activeUser()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byEmail: map[string]*models.User{"alice@example.com": user}},
		c: &fakeCodesRepo{}, r: &fakeRefreshRepo{},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Login(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("Login by email error: %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, c: &fakeCodesRepo{}, r: &fakeRefreshRepo{}}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Login(context.Background(), "ghost", "pw"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byUsername: map[string]*models.User{"alice": activeUser()}},
		c: &fakeCodesRepo{}, r: &fakeRefreshRepo{},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Login(context.Background(), "alice", "wrong"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	user := activeUser()
	user.Active = false
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byUsername: map[string]*models.User{"alice": user}},
		c: &fakeCodesRepo{}, r: &fakeRefreshRepo{},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Login(context.Background(), "alice", "s3cret"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	user := activeUser()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byID: map[uuid.UUID]*models.User{user.ID: user}},
		c: &fakeCodesRepo{},
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{
				Token: "old", UserID: user.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			},
		},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	pair, err := s.Refresh(context.Background(), "old")
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if pair.RefreshToken == "old" {
		t.Fatal("refresh token was not rotated")
	}
	if len(rm.r.revokedAllFor) != 1 || rm.r.revokedAllFor[0] != user.ID {
		t.Fatalf("old tokens not revoked: %v", rm.r.revokedAllFor)
	}
}

func TestRefresh_Unknown(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{}, c: &fakeCodesRepo{},
		r: &fakeRefreshRepo{findErr: common.ErrorNotFound},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Refresh(context.Background(), "ghost"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

func TestRefresh_Revoked(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{}, c: &fakeCodesRepo{},
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{
				Token: "r", UserID: uuid.New(), Revoked: true,
				ExpiresAt: time.Now().Add(time.Hour),
			},
		},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Refresh(context.Background(), "r"); !errors.Is(err, common.ErrRefreshTokenRevoked) {
		t.Fatalf("want common.ErrRefreshTokenRevoked, got %v", err)
	}
}

func TestRefresh_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{}, c: &fakeCodesRepo{},
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{
				Token: "r", UserID: uuid.New(),
				ExpiresAt: time.Now().Add(-time.Minute),
			},
		},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Refresh(context.Background(), "r"); !errors.Is(err, common.ErrRefreshTokenExpired) {
		t.Fatalf("want common.ErrRefreshTokenExpired, got %v", err)
	}
}

func TestRefresh_InactiveOwner(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	user := activeUser()
	user.Active = false
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byID: map[uuid.UUID]*models.User{user.ID: user}},
		c: &fakeCodesRepo{},
		r: &fakeRefreshRepo{
			findOut: &models.RefreshToken{
				Token: "r", UserID: user.ID,
				ExpiresAt: time.Now().Add(time.Hour),
			},
		},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if _, err := s.Refresh(context.Background(), "r"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("want common.ErrorUnauthorized, got %v", err)
	}
}

// --- Logout ---

func TestLogout_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, c: &fakeCodesRepo{}, r: &fakeRefreshRepo{}}
	s := newAuthService(t, db, rm, &fakeSender{})

	if err := s.Logout(context.Background(), "r"); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if len(rm.r.revoked) != 1 || rm.r.revoked[0] != "r" {
		t.Fatalf("token not revoked: %v", rm.r.revoked)
	}
}

func TestLogout_UnknownTokenIsNoop(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{}, c: &fakeCodesRepo{},
		r: &fakeRefreshRepo{revokeErr: common.ErrorNotFound},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if err := s.Logout(context.Background(), "ghost"); err != nil {
		t.Fatalf("Logout of unknown token must succeed, got %v", err)
	}
}

func TestLogout_DBError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{}, c: &fakeCodesRepo{},
		r: &fakeRefreshRepo{revokeErr: errors.New("boom")},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	err := s.Logout(context.Background(), "r")
	if err == nil || !regexp.MustCompile(`error revoking refresh token: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

// --- Password reset ---

func TestInitiatePasswordReset_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	user := activeUser()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byEmail: map[string]*models.User{"alice@example.com": user}},
		c: &fakeCodesRepo{}, r: &fakeRefreshRepo{},
	}
	sender := &fakeSender{}
	s := newAuthService(t, db, rm, sender)

	if err := s.InitiatePasswordReset(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("InitiatePasswordReset error: %v", err)
	}
	if rm.c.upserted == nil || rm.c.upserted.UserID != user.ID {
		t.Fatalf("code not stored for user: %+v", rm.c.upserted)
	}
	if sender.resetCode != rm.c.upserted.Code {
		t.Fatalf("sent code mismatch: %q vs %q", sender.resetCode, rm.c.upserted.Code)
	}
}

func TestInitiatePasswordReset_UnknownEmail(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}, c: &fakeCodesRepo{}, r: &fakeRefreshRepo{}}
	s := newAuthService(t, db, rm, &fakeSender{})

	if err := s.InitiatePasswordReset(context.Background(), "ghost@example.com"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestInitiatePasswordReset_EmailFailure(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{byEmail: map[string]*models.User{"alice@example.com": activeUser()}},
		c: &fakeCodesRepo{}, r: &fakeRefreshRepo{},
	}
	s := newAuthService(t, db, rm, &fakeSender{resetErr: errors.New("smtp down")})

	if err := s.InitiatePasswordReset(context.Background(), "alice@example.com"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("want common.ErrorInternal, got %v", err)
	}
}

func TestConfirmPasswordReset_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	userID := uuid.New()
	rm := &fakeRepoManager{
		u: &fakeUsersRepo{},
		c: &fakeCodesRepo{consumeOut: userID},
		r: &fakeRefreshRepo{},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	if err := s.ConfirmPasswordReset(context.Background(), "alice@example.com", "123456", "newpass"); err != nil {
		t.Fatalf("ConfirmPasswordReset error: %v", err)
	}
	if rm.u.updatedHash != "hashed:newpass" {
		t.Fatalf("password not updated: %q", rm.u.updatedHash)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestConfirmPasswordReset_InvalidCode(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{
		u: &fakeUsersRepo{},
		c: &fakeCodesRepo{consumeErr: common.ErrInvalidCode},
		r: &fakeRefreshRepo{},
	}
	s := newAuthService(t, db, rm, &fakeSender{})

	err := s.ConfirmPasswordReset(context.Background(), "alice@example.com", "000000", "newpass")
	if !errors.Is(err, common.ErrInvalidCode) {
		t.Fatalf("want common.ErrInvalidCode, got %v", err)
	}
	if rm.u.updatedHash != "" {
		t.Fatalf("password must not change, got %q", rm.u.updatedHash)
	}
}
