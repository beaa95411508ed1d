package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTer() *JWTer {
	return &JWTer{
		Secret: []byte("test-jwt-secret"),
		Issuer: "localmart",
		TTL:    7 * 24 * time.Hour,
	}
}

func TestJWTer_Issue_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	tok, err := j.Issue(42, "a@x.com", RoleDealer, DashboardsFor(RoleDealer))
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, RoleDealer, claims.UserType)
	assert.Equal(t, []string{DashboardCustomer, DashboardDealer}, claims.DashboardAccess)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTer_Issue_NoSecret(t *testing.T) {
	t.Parallel()

	j := &JWTer{Issuer: "localmart", TTL: time.Hour}
	_, err := j.Issue(1, "a@x.com", RoleCustomer, DashboardsFor(RoleCustomer))
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestJWTer_Parse_WrongSecret(t *testing.T) {
	t.Parallel()

	j := newTestJWTer()
	tok, err := j.Issue(1, "a@x.com", RoleCustomer, DashboardsFor(RoleCustomer))
	require.NoError(t, err)

	other := &JWTer{Secret: []byte("another-secret"), Issuer: j.Issuer, TTL: j.TTL}
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestJWTer_Parse_Expired(t *testing.T) {
	t.Parallel()

	j := &JWTer{Secret: []byte("test-jwt-secret"), Issuer: "localmart", TTL: -time.Minute}
	tok, err := j.Issue(1, "a@x.com", RoleCustomer, DashboardsFor(RoleCustomer))
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestDashboardsFor_MappingTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		userType string
		want     []string
	}{
		{RoleCustomer, []string{DashboardCustomer}},
		{RoleDealer, []string{DashboardCustomer, DashboardDealer}},
		{RoleAdmin, []string{DashboardDealer, DashboardCustomer, DashboardAdmin}},
		{"", []string{DashboardCustomer}},
		{"shopkeeper", []string{DashboardCustomer}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("role_"+tt.userType, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DashboardsFor(tt.userType))
		})
	}
}

func TestHasDashboard(t *testing.T) {
	t.Parallel()

	ds := DashboardsFor(RoleDealer)
	assert.True(t, HasDashboard(ds, DashboardDealer))
	assert.True(t, HasDashboard(ds, DashboardCustomer))
	assert.False(t, HasDashboard(ds, DashboardAdmin))
	assert.False(t, HasDashboard(nil, DashboardCustomer))
}

func TestPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("p1")
	require.NoError(t, err)
	h2, err := HashPassword("p1")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "salted hashes of the same input should differ")
	assert.True(t, CheckPassword("p1", h1))
	assert.True(t, CheckPassword("p1", h2))
	assert.False(t, CheckPassword("wrong", h1))
}
