package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNew_EmptyKey(t *testing.T) {
	_, err := New(nil, time.Hour)
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestNew_DefaultTTL(t *testing.T) {
	c, err := New([]byte("k"), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, c.TTL())
}

func TestSignVerify_RoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		id    string
		email string
	}{
		{"object id", "65f1c0a2b3d4e5f607182930", "a@x.com"},
		{"uuid", "0b7e4c1e-9f0e-4f39-8d3b-1f1c2f4a5b6c", "b@y.org"},
		{"unicode email", "u-1", "δ@example.com"},
	}

	codec, err := New([]byte("super-secret"), time.Hour)
	require.NoError(t, err)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signed, issued, err := codec.Sign(tc.id, tc.email)
			require.NoError(t, err)
			require.NotEmpty(t, issued.ID)

			got, err := codec.Verify(signed)
			require.NoError(t, err)
			assert.Equal(t, tc.id, got.UserID)
			assert.Equal(t, tc.email, got.Email)
			assert.Equal(t, issued.ID, got.ID)
			assert.WithinDuration(t, issued.ExpiresAtTime(), got.ExpiresAtTime(), time.Second)
		})
	}
}

func TestSign_ExpiryIsIssuancePlusTTL(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	codec, err := New([]byte("k"), time.Hour, WithClock(fixedClock(now)))
	require.NoError(t, err)

	_, claims, err := codec.Sign("u1", "a@x.com")
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Time.Equal(now))
	assert.True(t, claims.ExpiresAtTime().Equal(now.Add(time.Hour)))
}

func TestVerify_Expired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	signer, err := New([]byte("k"), time.Hour, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	signed, _, err := signer.Sign("u1", "a@x.com")
	require.NoError(t, err)

	within, err := New([]byte("k"), time.Hour, WithClock(fixedClock(issuedAt.Add(59*time.Minute))))
	require.NoError(t, err)
	_, err = within.Verify(signed)
	require.NoError(t, err)

	after, err := New([]byte("k"), time.Hour, WithClock(fixedClock(issuedAt.Add(time.Hour+time.Second))))
	require.NoError(t, err)
	_, err = after.Verify(signed)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_WrongKey(t *testing.T) {
	signer, err := New([]byte("right-secret"), time.Hour)
	require.NoError(t, err)
	verifier, err := New([]byte("wrong-secret"), time.Hour)
	require.NoError(t, err)

	signed, _, err := signer.Sign("u2", "b@x.com")
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestVerify_TamperedByte(t *testing.T) {
	codec, err := New([]byte("k"), time.Hour)
	require.NoError(t, err)

	signed, _, err := codec.Sign("u3", "c@x.com")
	require.NoError(t, err)

	for i := 0; i < len(signed); i++ {
		b := []byte(signed)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		_, err := codec.Verify(string(b))
		if !errors.Is(err, ErrInvalid) {
			t.Fatalf("byte %d flipped: expected ErrInvalid, got %v", i, err)
		}
	}
}

func TestVerify_Malformed(t *testing.T) {
	codec, err := New([]byte("k"), time.Hour)
	require.NoError(t, err)

	for _, in := range []string{"", "not.a.jwt", strings.Repeat("x", 64)} {
		_, err := codec.Verify(in)
		assert.ErrorIs(t, err, ErrInvalid, "input %q", in)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	codec, err := New([]byte("k"), time.Hour)
	require.NoError(t, err)

	// {"alg":"none","typ":"JWT"}.{"uid":"u1","exp":9999999999}.
	unsigned := "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJ1aWQiOiJ1MSIsImV4cCI6OTk5OTk5OTk5OX0."
	_, err = codec.Verify(unsigned)
	require.ErrorIs(t, err, ErrInvalid)
}
