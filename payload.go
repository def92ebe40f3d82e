package patta2pdf

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Placeholder stands in for empty record fields in the payload.
const Placeholder = "N/A"

// DefaultStatus is used when a record carries no status.
const DefaultStatus = "Active"

// DefaultVerificationBaseURL hosts the /verify/{id} endpoint.
const DefaultVerificationBaseURL = "https://fra.gov.in"

// Boundaries are the four cardinal boundary descriptions.
type Boundaries struct {
	East  string `json:"east"`
	West  string `json:"west"`
	North string `json:"north"`
	South string `json:"south"`
}

// Payload is the verification data encoded in the QR symbol and attached to
// the PDF. It is rebuilt for every export; the signature and generatedAt
// make each one unique.
type Payload struct {
	ID               string     `json:"id"`
	SerialNo         string     `json:"serialNo"`
	HolderName       string     `json:"holderName"`
	FatherName       string     `json:"fatherName"`
	Caste            string     `json:"caste"`
	Age              string     `json:"age"`
	State            string     `json:"state"`
	District         string     `json:"district"`
	Tehsil           string     `json:"tehsil"`
	GramPanchayat    string     `json:"gramPanchayat"`
	Village          string     `json:"village"`
	KhasraNo         string     `json:"khasraNo"`
	TotalAreaSqft    string     `json:"totalAreaSqft"`
	IssueDate        string     `json:"issueDate"`
	Boundaries       Boundaries `json:"boundaries"`
	IssuingAuthority string     `json:"issuingAuthority"`
	VerificationURL  string     `json:"verificationUrl"`
	DigitalSignature string     `json:"digitalSignature"`
	Status           string     `json:"status"`
	GeneratedAt      string     `json:"generatedAt"`
}

// PayloadOptions carry the issuer details that are not part of a record.
type PayloadOptions struct {
	BaseURL   string // default DefaultVerificationBaseURL
	Authority string
}

// BuildPayload projects rec into a verification payload stamped with now.
// It never fails: missing fields become Placeholder.
func BuildPayload(rec Record, now time.Time, opts PayloadOptions) Payload {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultVerificationBaseURL
	}
	status := strings.TrimSpace(rec.Status)
	if status == "" {
		status = DefaultStatus
	}

	return Payload{
		ID:            orPlaceholder(rec.ID),
		SerialNo:      orPlaceholder(rec.SerialNo),
		HolderName:    orPlaceholder(rec.HolderName),
		FatherName:    orPlaceholder(rec.FatherName),
		Caste:         orPlaceholder(rec.Caste),
		Age:           orPlaceholder(rec.Age),
		State:         orPlaceholder(rec.State),
		District:      orPlaceholder(rec.District),
		Tehsil:        orPlaceholder(rec.Tehsil),
		GramPanchayat: orPlaceholder(rec.GramPanchayat),
		Village:       orPlaceholder(rec.Village),
		KhasraNo:      orPlaceholder(rec.KhasraNo),
		TotalAreaSqft: orPlaceholder(rec.TotalAreaSqft),
		IssueDate:     orPlaceholder(rec.Date),
		Boundaries: Boundaries{
			East:  orPlaceholder(rec.East),
			West:  orPlaceholder(rec.West),
			North: orPlaceholder(rec.North),
			South: orPlaceholder(rec.South),
		},
		IssuingAuthority: orPlaceholder(opts.Authority),
		VerificationURL:  base + "/verify/" + rec.ID,
		DigitalSignature: Signature(rec.ID, now),
		Status:           status,
		GeneratedAt:      now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// Signature is the synthetic signature of a payload: the record id and the
// generation time in Unix milliseconds.
func Signature(id string, t time.Time) string {
	return fmt.Sprintf("FRA-SIG-%s-%d", id, t.UnixMilli())
}

// JSON returns the compact encoding embedded in the QR symbol.
func (p Payload) JSON() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}

// IndentedJSON returns a readable encoding for the PDF attachment.
func (p Payload) IndentedJSON() ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return data, nil
}

func orPlaceholder(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return Placeholder
	}
	return s
}
