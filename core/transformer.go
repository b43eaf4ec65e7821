package core

import (
	"fmt"
	"strings"

	"github.com/SamuelRCrider/scrub-go/utils"
)

// Field names of the customer record
const (
	FieldCustomerID   = "C_CUSTOMER_ID"
	FieldFirstName    = "C_FIRST_NAME"
	FieldLastName     = "C_LAST_NAME"
	FieldEmailAddress = "C_EMAIL_ADDRESS"
	FieldEmailDomain  = "C_EMAIL_DOMAIN"
	FieldRecordDate   = "record_date"
)

const unknownCustomerID = "Unknown"

// TransformRecord strips PII from rec, derives the email domain and tags the
// record with recordDate. rec is modified in place and returned.
func TransformRecord(rec *Record, recordDate string, reporter Reporter) *Record {
	if reporter == nil {
		reporter = nopReporter{}
	}

	rec.Delete(FieldFirstName)
	rec.Delete(FieldLastName)

	email, _ := rec.GetString(FieldEmailAddress)
	rec.Delete(FieldEmailAddress)

	if email != "" {
		rec.SetString(FieldEmailDomain, EmailDomain(email))
	} else {
		rec.Delete(FieldEmailDomain)
		customerID := CustomerID(rec)
		reporter.Report(utils.Diagnostic{
			Kind:       utils.KindMissingEmail,
			CustomerID: customerID,
			Message:    fmt.Sprintf("missing email address for record with C_CUSTOMER_ID: %s", customerID),
		})
	}

	rec.SetString(FieldRecordDate, recordDate)

	return rec
}

// EmailDomain returns everything after the last '@'. An address without one
// is returned whole.
func EmailDomain(email string) string {
	return email[strings.LastIndex(email, "@")+1:]
}

// CustomerID renders C_CUSTOMER_ID for messages, "Unknown" when absent
func CustomerID(rec *Record) string {
	if id, ok := rec.GetString(FieldCustomerID); ok {
		return id
	}
	if raw, ok := rec.Get(FieldCustomerID); ok {
		return string(raw)
	}
	return unknownCustomerID
}
