package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelRCrider/scrub-go/utils"
)

func mustParse(t *testing.T, line string) *Record {
	t.Helper()
	rec, err := ParseRecord([]byte(line))
	require.NoError(t, err)
	return rec
}

func encode(t *testing.T, rec *Record) string {
	t.Helper()
	data, err := rec.Encode()
	require.NoError(t, err)
	return string(data)
}

func TestTransformRecordStripsPII(t *testing.T) {
	rec := mustParse(t, `{"C_CUSTOMER_ID": "1", "C_FIRST_NAME": "A", "C_LAST_NAME": "B", "C_EMAIL_ADDRESS": "a@example.com"}`)
	recorder := NewRecorder()

	out := TransformRecord(rec, "2021-01-10", recorder)

	assert.Same(t, rec, out)
	assert.False(t, out.Has(FieldFirstName))
	assert.False(t, out.Has(FieldLastName))
	assert.False(t, out.Has(FieldEmailAddress))

	domain, ok := out.GetString(FieldEmailDomain)
	require.True(t, ok)
	assert.Equal(t, "example.com", domain)

	date, ok := out.GetString(FieldRecordDate)
	require.True(t, ok)
	assert.Equal(t, "2021-01-10", date)

	assert.Empty(t, recorder.Diagnostics())
	assert.Equal(t, `{"C_CUSTOMER_ID":"1","C_EMAIL_DOMAIN":"example.com","record_date":"2021-01-10"}`, encode(t, out))
}

func TestTransformRecordMissingEmail(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		customerID string
	}{
		{name: "absent", input: `{"C_CUSTOMER_ID": "2"}`, customerID: "2"},
		{name: "empty", input: `{"C_CUSTOMER_ID": "3", "C_EMAIL_ADDRESS": ""}`, customerID: "3"},
		{name: "null", input: `{"C_CUSTOMER_ID": "4", "C_EMAIL_ADDRESS": null}`, customerID: "4"},
		{name: "not a string", input: `{"C_CUSTOMER_ID": "5", "C_EMAIL_ADDRESS": 42}`, customerID: "5"},
		{name: "numeric id", input: `{"C_CUSTOMER_ID": 6}`, customerID: "6"},
		{name: "no id", input: `{"C_FIRST_NAME": "A"}`, customerID: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := NewRecorder()
			out := TransformRecord(mustParse(t, tt.input), "2021-01-10", recorder)

			assert.False(t, out.Has(FieldEmailAddress))
			assert.False(t, out.Has(FieldEmailDomain))
			assert.True(t, out.Has(FieldRecordDate))

			diags := recorder.Diagnostics()
			require.Len(t, diags, 1)
			assert.Equal(t, utils.KindMissingEmail, diags[0].Kind)
			assert.Equal(t, tt.customerID, diags[0].CustomerID)
			assert.Contains(t, diags[0].Message, tt.customerID)
		})
	}
}

func TestTransformRecordDropsStaleDomainWithoutEmail(t *testing.T) {
	out := TransformRecord(mustParse(t, `{"C_CUSTOMER_ID": "7", "C_EMAIL_DOMAIN": "old.com"}`), "d", nil)

	assert.False(t, out.Has(FieldEmailDomain))
}

func TestTransformRecordOverwritesRecordDate(t *testing.T) {
	rec := mustParse(t, `{"record_date": "1999-12-31", "C_CUSTOMER_ID": "1", "C_EMAIL_ADDRESS": "x@y.z"}`)

	out := TransformRecord(rec, "2021-01-10", nil)

	assert.Equal(t, `{"record_date":"2021-01-10","C_CUSTOMER_ID":"1","C_EMAIL_DOMAIN":"y.z"}`, encode(t, out))
}

func TestTransformRecordKeepsUnrelatedFields(t *testing.T) {
	rec := mustParse(t, `{"C_CUSTOMER_ID": "1", "BIG": 12345678901234567890, "NESTED": {"b": 1, "a": [true, null]}, "C_EMAIL_ADDRESS": "a@b.c"}`)

	out := TransformRecord(rec, "2021-01-10", nil)

	assert.Equal(t,
		`{"C_CUSTOMER_ID":"1","BIG":12345678901234567890,"NESTED":{"b":1,"a":[true,null]},"C_EMAIL_DOMAIN":"b.c","record_date":"2021-01-10"}`,
		encode(t, out))
}

func TestEmailDomain(t *testing.T) {
	tests := map[string]string{
		"user@domain.tld":     "domain.tld",
		"odd@name@domain.tld": "domain.tld",
		"no-at-sign":          "no-at-sign",
		"trailing@":           "",
		"@leading.com":        "leading.com",
	}

	for email, want := range tests {
		assert.Equal(t, want, EmailDomain(email), email)
	}
}
