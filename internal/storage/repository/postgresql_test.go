package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCheckDatabaseReady(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	require.NoError(t, CheckDatabaseReady(storage))
}

func TestStorage_RegisterMember(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	user := models.User{Email: "a@x.com", FullName: "Ann", PasswordHash: "hash", Role: models.RoleUser}
	member := models.Member{Email: "a@x.com", FullName: "Ann", MembershipType: models.MembershipProfessional}

	userID, memberID, err := storage.RegisterMember(ctx, user, member)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)
	assert.NotEmpty(t, memberID)

	got, err := storage.LatestMember(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, memberID, got.ID)
	assert.Equal(t, models.StatusPending, got.MembershipStatus)
	require.NotNil(t, got.UserID)
	assert.Equal(t, userID, *got.UserID)

	_, _, err = storage.RegisterMember(ctx, user, member)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	u, err := storage.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, userID, u.UUID)

	_, err = storage.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_EnsureAdmin_TakesOverAccount(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	user := models.User{Email: "chair@iwahs.org", FullName: "Mallory", PasswordHash: "mallory-hash", Role: models.RoleUser}
	member := models.Member{Email: "chair@iwahs.org", FullName: "Mallory", MembershipType: models.MembershipStudent}
	_, _, err := storage.RegisterMember(ctx, user, member)
	require.NoError(t, err)

	require.NoError(t, storage.EnsureAdmin(ctx, "chair@iwahs.org", "seed-hash"))
	u, err := storage.GetUserByEmail(ctx, "chair@iwahs.org")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "seed-hash", u.PasswordHash)

	require.NoError(t, storage.EnsureAdmin(ctx, "secretary@iwahs.org", "seed-hash"))
	u, err = storage.GetUserByEmail(ctx, "secretary@iwahs.org")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
}

func TestStorage_FindPendingMember_MostRecent(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	factory.CreateMember(t, "a@x.com", models.MembershipStudent, models.StatusPending, base, nil)
	newest := factory.CreateMember(t, "a@x.com", models.MembershipProfessional, models.StatusPending, base.Add(time.Hour), nil)
	factory.CreateMember(t, "a@x.com", models.MembershipProfessional, models.StatusActive, base.Add(2*time.Hour), nil)

	got, err := storage.FindPendingMember(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, newest, got.ID)

	_, err = storage.FindPendingMember(ctx, "b@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_LatestMember_PrefersActive(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	active := factory.CreateMember(t, "a@x.com", models.MembershipProfessional, models.StatusActive, base, nil)
	factory.CreateMember(t, "a@x.com", models.MembershipStudent, models.StatusPending, base.Add(time.Hour), nil)
	latest := factory.CreateMember(t, "b@x.com", models.MembershipStudent, models.StatusExpired, base.Add(time.Hour), nil)
	factory.CreateMember(t, "b@x.com", models.MembershipStudent, models.StatusExpired, base, nil)

	got, err := storage.LatestMember(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, active, got.ID)

	got, err = storage.LatestMember(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Equal(t, latest, got.ID)
}

func TestStorage_ActivateMember(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)

	id := factory.CreateMember(t, "a@x.com", models.MembershipProfessional, models.StatusPending, time.Now(), nil)
	other := factory.CreateMember(t, "c@x.com", models.MembershipProfessional, models.StatusPending, time.Now(), nil)
	payment := models.Payment{
		TxnID:      "T1",
		PayerEmail: "a@x.com",
		Amount:     decimal.NewFromInt(250),
		Source:     models.SourcePayPal,
	}
	expires := time.Now().AddDate(1, 0, 0)

	require.NoError(t, storage.ActivateMember(ctx, id, payment, expires))
	verification.VerifyMemberStatus(t, id, models.StatusActive, strPtr("T1"))
	verification.VerifyLedgerCount(t, "T1", 1)

	recorded, err := storage.TransactionRecorded(ctx, "T1")
	require.NoError(t, err)
	assert.True(t, recorded)

	// повторная доставка той же транзакции
	err = storage.ActivateMember(ctx, other, payment, expires)
	assert.ErrorIs(t, err, ErrTransactionClaimed)
	verification.VerifyMemberStatus(t, other, models.StatusPending, nil)

	// запись уже не pending
	payment.TxnID = "T2"
	err = storage.ActivateMember(ctx, id, payment, expires)
	assert.ErrorIs(t, err, ErrStateChanged)
	verification.VerifyLedgerCount(t, "T2", 0)
}

func TestStorage_ConfirmRegistration(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	verification := NewTestVerification(storage)

	base := time.Now().Add(-time.Hour)
	factory.CreateRegistration(t, "a@x.com", 2025, models.TicketRegular, "0", base)
	latest := factory.CreateRegistration(t, "a@x.com", 2026, models.TicketStudent, "0", base.Add(time.Minute))
	factory.CreateRegistration(t, "a@x.com", 2026, models.TicketWAHSMember, "0", base.Add(2*time.Minute))

	got, err := storage.FindUnpaidRegistration(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, latest, got.ID)

	payment := models.Payment{TxnID: "R1", PayerEmail: "a@x.com", Amount: decimal.RequireFromString("120.00"), Source: models.SourcePayPal}
	require.NoError(t, storage.ConfirmRegistration(ctx, latest, payment))
	verification.VerifyLedgerCount(t, "R1", 1)

	reg, err := storage.GetRegistration(ctx, latest)
	require.NoError(t, err)
	assert.True(t, reg.AmountPaid.Equal(decimal.NewFromInt(120)))
	require.NotNil(t, reg.PayPalTransactionID)
	assert.Equal(t, "R1", *reg.PayPalTransactionID)

	payment.TxnID = "R2"
	assert.ErrorIs(t, storage.ConfirmRegistration(ctx, latest, payment), ErrStateChanged)

	txns, err := storage.ListTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, models.RecordRegistration, txns[0].RecordKind)
}

func TestStorage_CreateRegistration_Duplicate(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	reg := models.Registration{
		Email:        "a@x.com",
		FullName:     "Ann",
		CongressYear: 2026,
		TicketType:   models.TicketRegular,
		AmountPaid:   decimal.Zero,
	}
	id, err := storage.CreateRegistration(ctx, reg)
	require.NoError(t, err)

	_, err = storage.CreateRegistration(ctx, reg)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)

	require.NoError(t, storage.WithdrawRegistration(ctx, id))
	assert.ErrorIs(t, storage.WithdrawRegistration(ctx, id), ErrNotFound)

	_, err = storage.CreateRegistration(ctx, reg)
	require.NoError(t, err, "withdrawn registration must not block a new one")

	list, err := storage.ListRegistrations(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = storage.ListRegistrations(ctx, 2030)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStorage_ExpiryQueries(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	now := time.Now()
	past := now.Add(-time.Hour)
	soon := now.Add(72 * time.Hour)
	later := now.Add(60 * 24 * time.Hour)

	expired := factory.CreateMember(t, "old@x.com", models.MembershipProfessional, models.StatusActive, now, &past)
	expiring := factory.CreateMember(t, "soon@x.com", models.MembershipStudent, models.StatusActive, now, &soon)
	factory.CreateMember(t, "later@x.com", models.MembershipStudent, models.StatusActive, now, &later)
	factory.CreateMember(t, "forever@x.com", models.MembershipStudent, models.StatusActive, now, nil)

	list, err := storage.FindMembersDueReminder(ctx, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, expiring, list[0].ID)

	require.NoError(t, storage.MarkReminded(ctx, expiring, now))
	list, err = storage.FindMembersDueReminder(ctx, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list, "reminded member must not be selected again")
	assert.ErrorIs(t, storage.MarkReminded(ctx, "00000000-0000-0000-0000-000000000000", now), ErrNotFound)

	// продление сбрасывает отметку
	_, err = storage.UpdateMemberStatus(ctx, expiring, models.StatusActive, &soon)
	require.NoError(t, err)
	list, err = storage.FindMembersDueReminder(ctx, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, list, 1)

	n, err := storage.ExpireMembers(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	m, err := storage.GetMember(ctx, expired)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, m.MembershipStatus)

	active, err := storage.ListMembers(ctx, models.MemberFilter{Status: models.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 3)

	students, err := storage.ListMembers(ctx, models.MemberFilter{Status: models.StatusActive, Type: models.MembershipStudent})
	require.NoError(t, err)
	assert.Len(t, students, 3)

	expiresAt := now.Add(24 * time.Hour)
	updated, err := storage.UpdateMemberStatus(ctx, expired, models.StatusActive, &expiresAt)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, updated.MembershipStatus)
	require.NotNil(t, updated.ExpiresAt)
	assert.WithinDuration(t, expiresAt, *updated.ExpiresAt, time.Millisecond)

	_, err = storage.UpdateMemberStatus(ctx, "00000000-0000-0000-0000-000000000000", models.StatusActive, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
