package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrKycDocumentNotFound indicates that the KYC document is not found.
	ErrKycDocumentNotFound = errors.New("kyc document not found")
	// ErrKycAlreadySubmitted indicates that the user already has a KYC document on file.
	ErrKycAlreadySubmitted = errors.New("kyc document already submitted")
)

// KycDocument holds the know-your-customer metadata captured for a user.
// Image fields hold storage paths; file handling lives outside this service.
type KycDocument struct {
	ID                   uuid.UUID `json:"id"`
	UserID               uuid.UUID `json:"user_id"`
	FatherName           string    `json:"father_name"`
	MotherName           string    `json:"mother_name"`
	GrandfatherName      string    `json:"grandfather_name"`
	PermanentAddress     string    `json:"permanent_address"`
	UserImagePath        string    `json:"user_image_path"`
	CitizenshipImagePath string    `json:"citizenship_image_path"`
	IsApproved           bool      `json:"is_approved"`
	UploadedAt           time.Time `json:"uploaded_at"`
}

// CreateKycDocumentParams is the input data to capture a KYC document.
type CreateKycDocumentParams struct {
	UserID               uuid.UUID `json:"user_id"`
	FatherName           string    `json:"father_name"`
	MotherName           string    `json:"mother_name"`
	GrandfatherName      string    `json:"grandfather_name"`
	PermanentAddress     string    `json:"permanent_address"`
	UserImagePath        string    `json:"user_image_path"`
	CitizenshipImagePath string    `json:"citizenship_image_path"`
}
