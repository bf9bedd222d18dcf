package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserID_Unmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want UserID
	}{
		{`42`, "42"},
		{`-0`, "0"},
		{`9007199254740993`, "9007199254740993"},
		{`"42"`, "42"},
		{`" abc-1 "`, "abc-1"},
		{`null`, ""},
	}
	for _, tc := range cases {
		var id UserID
		require.NoError(t, json.Unmarshal([]byte(tc.in), &id), tc.in)
		assert.Equal(t, tc.want, id, tc.in)
	}
}

func TestUserID_RejectsNonIntegerForms(t *testing.T) {
	for _, in := range []string{`true`, `{"id":1}`, `[1]`, `1e3`, `4.2`, `1.0`} {
		var id UserID
		assert.Error(t, json.Unmarshal([]byte(in), &id), in)
	}
}

func TestFailureKind(t *testing.T) {
	cases := map[string]error{
		KindConfigurationMissing:   fmt.Errorf("DB_HOST: %w", ErrConfigurationMissing),
		KindSecretRetrievalFailure: fmt.Errorf("get secret: %w", ErrSecretRetrieval),
		KindMalformedPayload:       ErrMalformedPayload,
		KindEmailSendFailure:       fmt.Errorf("sendgrid: %w", ErrEmailSend),
		KindDatabaseUpdateFailure:  errors.Join(ErrDatabaseUpdate, ErrUserNotFound),
		KindUnknown:                errors.New("boom"),
	}
	for want, err := range cases {
		assert.Equal(t, want, FailureKind(err))
	}
}
