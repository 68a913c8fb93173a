package kyc

// RejectRequest carries the reason shown to the user.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
